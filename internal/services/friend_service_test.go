package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
)

func TestSendRequest(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func(s *fakeStore)
		senderID   uint
		receiverID uint
		wantCode   string
	}{
		{
			name:       "success",
			setup:      func(s *fakeStore) {},
			senderID:   1,
			receiverID: 2,
		},
		{
			name:       "self request",
			setup:      func(s *fakeStore) {},
			senderID:   1,
			receiverID: 1,
			wantCode:   errors.ErrCodeSelfRequest,
		},
		{
			name:       "unknown receiver",
			setup:      func(s *fakeStore) {},
			senderID:   1,
			receiverID: 99,
			wantCode:   errors.ErrCodeNotFound,
		},
		{
			name: "already friends",
			setup: func(s *fakeStore) {
				s.addFriendship(1, 2)
			},
			senderID:   1,
			receiverID: 2,
			wantCode:   errors.ErrCodeAlreadyFriends,
		},
		{
			name: "pending request same direction",
			setup: func(s *fakeStore) {
				s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
			},
			senderID:   1,
			receiverID: 2,
			wantCode:   errors.ErrCodeDuplicateRequest,
		},
		{
			name: "pending request opposite direction",
			setup: func(s *fakeStore) {
				s.addPendingRequest(2, 1, time.Now().UTC().Add(time.Hour))
			},
			senderID:   1,
			receiverID: 2,
			wantCode:   errors.ErrCodeDuplicateRequest,
		},
		{
			name: "resend after denial allowed",
			setup: func(s *fakeStore) {
				req := s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
				req.Status = models.FriendRequestStatusDenied
			},
			senderID:   1,
			receiverID: 2,
		},
		{
			name: "resend after expiry allowed",
			setup: func(s *fakeStore) {
				req := s.addPendingRequest(1, 2, time.Now().UTC().Add(-time.Hour))
				req.Status = models.FriendRequestStatusExpired
			},
			senderID:   1,
			receiverID: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addUser(1, "alice")
			store.addUser(2, "bob")
			tt.setup(store)

			svc := NewFriendService(store, 0)
			request, err := svc.SendRequest(ctx, tt.senderID, tt.receiverID)

			if tt.wantCode != "" {
				if !errors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected code %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if request.Status != models.FriendRequestStatusPending {
				t.Errorf("expected pending status, got %s", request.Status)
			}
			wantExpiry := request.CreatedAt.Add(models.FriendRequestTTL)
			if !request.ExpiresAt.Equal(wantExpiry) {
				t.Errorf("expected expiry %v, got %v", wantExpiry, request.ExpiresAt)
			}
		})
	}
}

func TestSendRequestNotifiesReceiver(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")

	svc := NewFriendService(store, 0)
	request, err := svc.SendRequest(ctx, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	feed, err := store.Notifications().ListByUser(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feed) != 1 {
		t.Fatalf("expected 1 notification for receiver, got %d", len(feed))
	}
	n := feed[0]
	if n.Type != models.NotificationTypeFriendRequestReceived {
		t.Errorf("expected type %s, got %s", models.NotificationTypeFriendRequestReceived, n.Type)
	}
	if n.FriendRequestID == nil || *n.FriendRequestID != request.ID {
		t.Errorf("notification not linked to request %d", request.ID)
	}
	if !strings.Contains(n.Message, "alice") {
		t.Errorf("expected message to name the sender, got %q", n.Message)
	}

	senderFeed, _ := store.Notifications().ListByUser(ctx, 1)
	if len(senderFeed) != 0 {
		t.Errorf("sender should not be notified on send, got %d notifications", len(senderFeed))
	}
}

func TestSendRequestSanitizesUsername(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, `<script>alert(1)</script>mallory`)
	store.addUser(2, "bob")

	svc := NewFriendService(store, 0)
	if _, err := svc.SendRequest(ctx, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	feed, _ := store.Notifications().ListByUser(ctx, 2)
	if len(feed) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(feed))
	}
	if strings.Contains(feed[0].Message, "<script>") {
		t.Errorf("stored message contains markup: %q", feed[0].Message)
	}
	if !strings.Contains(feed[0].Message, "mallory") {
		t.Errorf("expected sanitized username to survive, got %q", feed[0].Message)
	}
}

func TestAccept(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		setup    func(s *fakeStore) uint // returns request id to act on
		actorID  uint
		wantCode string
	}{
		{
			name: "success",
			setup: func(s *fakeStore) uint {
				return s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour)).ID
			},
			actorID: 2,
		},
		{
			name:     "unknown request",
			setup:    func(s *fakeStore) uint { return 42 },
			actorID:  2,
			wantCode: errors.ErrCodeNotFound,
		},
		{
			name: "sender cannot accept",
			setup: func(s *fakeStore) uint {
				return s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour)).ID
			},
			actorID:  1,
			wantCode: errors.ErrCodeWrongActor,
		},
		{
			name: "third party cannot accept",
			setup: func(s *fakeStore) uint {
				return s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour)).ID
			},
			actorID:  3,
			wantCode: errors.ErrCodeWrongActor,
		},
		{
			// The actor check comes first: a non-party must get an
			// authorization failure, not a hint that the request settled.
			name: "third party on settled request",
			setup: func(s *fakeStore) uint {
				req := s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
				req.Status = models.FriendRequestStatusDenied
				return req.ID
			},
			actorID:  3,
			wantCode: errors.ErrCodeWrongActor,
		},
		{
			name: "sender on settled request",
			setup: func(s *fakeStore) uint {
				req := s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
				req.Status = models.FriendRequestStatusCancelled
				return req.ID
			},
			actorID:  1,
			wantCode: errors.ErrCodeWrongActor,
		},
		{
			name: "already denied",
			setup: func(s *fakeStore) uint {
				req := s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
				req.Status = models.FriendRequestStatusDenied
				return req.ID
			},
			actorID:  2,
			wantCode: errors.ErrCodeInvalidState,
		},
		{
			name: "already cancelled",
			setup: func(s *fakeStore) uint {
				req := s.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
				req.Status = models.FriendRequestStatusCancelled
				return req.ID
			},
			actorID:  2,
			wantCode: errors.ErrCodeInvalidState,
		},
		{
			name: "past expiry but unswept",
			setup: func(s *fakeStore) uint {
				return s.addPendingRequest(1, 2, time.Now().UTC().Add(-time.Minute)).ID
			},
			actorID:  2,
			wantCode: errors.ErrCodeInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.addUser(1, "alice")
			store.addUser(2, "bob")
			store.addUser(3, "carol")
			requestID := tt.setup(store)

			svc := NewFriendService(store, 0)
			accepted, err := svc.Accept(ctx, requestID, tt.actorID)

			if tt.wantCode != "" {
				if !errors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected code %s, got %v", tt.wantCode, err)
				}
				friends, _ := store.Friendships().AreFriends(ctx, 1, 2)
				if friends {
					t.Error("failed accept must not create a friendship")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if accepted.Status != models.FriendRequestStatusAccepted {
				t.Errorf("expected accepted status, got %s", accepted.Status)
			}
			friends, _ := store.Friendships().AreFriends(ctx, 1, 2)
			if !friends {
				t.Error("accept must create the friendship")
			}
		})
	}
}

func TestAcceptMarksOverdueRequestExpired(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	request := store.addPendingRequest(1, 2, time.Now().UTC().Add(-time.Minute))

	svc := NewFriendService(store, 0)
	_, err := svc.Accept(ctx, request.ID, 2)
	if !errors.HasCode(err, errors.ErrCodeInvalidState) {
		t.Fatalf("expected invalid-state error, got %v", err)
	}

	stored, _ := store.FriendRequests().GetByID(ctx, request.ID)
	if stored.Status != models.FriendRequestStatusExpired {
		t.Errorf("overdue request should be stored as expired, got %s", stored.Status)
	}
}

func TestAcceptSideEffects(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")

	svc := NewFriendService(store, 0)
	request, err := svc.SendRequest(ctx, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Accept(ctx, request.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The receiver acted; their received notification is gone.
	receiverFeed, _ := store.Notifications().ListByUser(ctx, 2)
	if len(receiverFeed) != 0 {
		t.Errorf("expected receiver feed to be empty after accept, got %d", len(receiverFeed))
	}

	senderFeed, _ := store.Notifications().ListByUser(ctx, 1)
	if len(senderFeed) != 1 {
		t.Fatalf("expected 1 notification for sender, got %d", len(senderFeed))
	}
	if senderFeed[0].Type != models.NotificationTypeFriendRequestAccepted {
		t.Errorf("expected type %s, got %s", models.NotificationTypeFriendRequestAccepted, senderFeed[0].Type)
	}
	if !strings.Contains(senderFeed[0].Message, "bob") {
		t.Errorf("expected message to name the receiver, got %q", senderFeed[0].Message)
	}
}

func TestAcceptWithExistingFriendship(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	request := store.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
	store.addFriendship(2, 1)

	svc := NewFriendService(store, 0)
	if _, err := svc.Accept(ctx, request.ID, 2); err != nil {
		t.Fatalf("accept with pre-existing friendship should be idempotent, got %v", err)
	}
	if len(store.friendships) != 1 {
		t.Errorf("expected a single friendship row, got %d", len(store.friendships))
	}
}

func TestDeny(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")

	svc := NewFriendService(store, 0)
	request, err := svc.SendRequest(ctx, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Deny(ctx, request.ID, 1); !errors.HasCode(err, errors.ErrCodeWrongActor) {
		t.Fatalf("sender must not deny, got %v", err)
	}

	denied, err := svc.Deny(ctx, request.ID, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if denied.Status != models.FriendRequestStatusDenied {
		t.Errorf("expected denied status, got %s", denied.Status)
	}

	friends, _ := store.Friendships().AreFriends(ctx, 1, 2)
	if friends {
		t.Error("deny must not create a friendship")
	}
	receiverFeed, _ := store.Notifications().ListByUser(ctx, 2)
	if len(receiverFeed) != 0 {
		t.Errorf("expected received notification to be removed on deny, got %d", len(receiverFeed))
	}
	senderFeed, _ := store.Notifications().ListByUser(ctx, 1)
	if len(senderFeed) != 0 {
		t.Errorf("deny must not notify the sender, got %d notifications", len(senderFeed))
	}

	if _, err := svc.Deny(ctx, request.ID, 2); !errors.HasCode(err, errors.ErrCodeInvalidState) {
		t.Fatalf("second deny should fail with invalid state, got %v", err)
	}
	// Wrong actor on the settled request still reads as an authorization
	// failure, not a state leak.
	if _, err := svc.Deny(ctx, request.ID, 1); !errors.HasCode(err, errors.ErrCodeWrongActor) {
		t.Fatalf("sender denying a settled request should get wrong-actor, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	request := store.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))

	svc := NewFriendService(store, 0)

	if _, err := svc.Cancel(ctx, request.ID, 2); !errors.HasCode(err, errors.ErrCodeWrongActor) {
		t.Fatalf("receiver must not cancel, got %v", err)
	}

	cancelled, err := svc.Cancel(ctx, request.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != models.FriendRequestStatusCancelled {
		t.Errorf("expected cancelled status, got %s", cancelled.Status)
	}

	if _, err := svc.Cancel(ctx, request.ID, 2); !errors.HasCode(err, errors.ErrCodeWrongActor) {
		t.Fatalf("receiver cancelling a settled request should get wrong-actor, got %v", err)
	}

	// The pair is free again.
	if _, err := svc.SendRequest(ctx, 2, 1); err != nil {
		t.Fatalf("new request after cancel should succeed, got %v", err)
	}
}

func TestListRequests(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	store.addUser(3, "carol")

	first := store.addPendingRequest(1, 2, time.Now().UTC().Add(time.Hour))
	second := store.addPendingRequest(3, 1, time.Now().UTC().Add(time.Hour))
	second.Status = models.FriendRequestStatusDenied
	third := store.addPendingRequest(1, 3, time.Now().UTC().Add(time.Hour))

	svc := NewFriendService(store, 0)
	sent, received, err := svc.ListRequests(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sent) != 2 || sent[0].ID != first.ID || sent[1].ID != third.ID {
		t.Errorf("unexpected sent requests: %+v", sent)
	}
	// Terminal statuses are included; filtering is the caller's concern.
	if len(received) != 1 || received[0].ID != second.ID {
		t.Errorf("unexpected received requests: %+v", received)
	}
	if received[0].Status != models.FriendRequestStatusDenied {
		t.Errorf("expected denied request in listing, got %s", received[0].Status)
	}
}

func TestExpireSweep(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	store.addUser(3, "carol")

	now := time.Now().UTC()
	overdue := store.addPendingRequest(1, 2, now.Add(-time.Hour))
	fresh := store.addPendingRequest(1, 3, now.Add(time.Hour))
	settled := store.addPendingRequest(2, 3, now.Add(-time.Hour))
	settled.Status = models.FriendRequestStatusAccepted

	svc := NewFriendService(store, 0)
	count, err := svc.ExpireSweep(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 expired row, got %d", count)
	}

	got, _ := store.FriendRequests().GetByID(ctx, overdue.ID)
	if got.Status != models.FriendRequestStatusExpired {
		t.Errorf("overdue request not expired: %s", got.Status)
	}
	got, _ = store.FriendRequests().GetByID(ctx, fresh.ID)
	if got.Status != models.FriendRequestStatusPending {
		t.Errorf("fresh request must stay pending, got %s", got.Status)
	}
	got, _ = store.FriendRequests().GetByID(ctx, settled.ID)
	if got.Status != models.FriendRequestStatusAccepted {
		t.Errorf("settled request must keep its status, got %s", got.Status)
	}

	// Sweeping again at the same instant is a no-op.
	count, err = svc.ExpireSweep(ctx, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected idempotent re-sweep, got %d rows", count)
	}
}

func TestExpiredRequestFreesThePair(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")

	svc := NewFriendService(store, 0)
	request, err := svc.SendRequest(ctx, 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.ExpireSweep(ctx, request.ExpiresAt.Add(time.Second)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.SendRequest(ctx, 2, 1); err != nil {
		t.Fatalf("expected resend after sweep to succeed, got %v", err)
	}
}

func TestFriendshipOperations(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	store.addUser(3, "carol")

	svc := NewFriendService(store, 0)

	if _, err := svc.AddFriendship(ctx, 2, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Same pair, either order, stays one row.
	if _, err := svc.AddFriendship(ctx, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.friendships) != 1 {
		t.Fatalf("expected 1 friendship row, got %d", len(store.friendships))
	}

	if _, err := svc.AddFriendship(ctx, 1, 1); err == nil {
		t.Fatal("self friendship must fail")
	}

	friends, err := svc.AreFriends(ctx, 2, 1)
	if err != nil || !friends {
		t.Fatalf("expected symmetric friendship, got %v %v", friends, err)
	}

	if _, err := svc.AddFriendship(ctx, 3, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, err := svc.ListFriends(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != 2 || list[1].ID != 3 {
		t.Errorf("unexpected friends list: %+v", list)
	}

	removed, err := svc.Unfriend(ctx, 2, 1)
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}
	removed, err = svc.Unfriend(ctx, 2, 1)
	if err != nil || removed {
		t.Fatalf("second removal should report false, got %v %v", removed, err)
	}
	friends, _ = svc.AreFriends(ctx, 1, 2)
	if friends {
		t.Error("friendship should be gone for both members")
	}
}

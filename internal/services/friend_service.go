package services

import (
	"context"
	"fmt"
	"time"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/internal/repositories"
	"github.com/omnitrackr/omnitrackr-api/internal/security"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
)

// FriendService owns the friend request lifecycle and the friendship
// registry. Every mutating operation runs as one storage transaction, so a
// status change and its side effects (friendship row, notifications) commit
// or roll back together.
type FriendService struct {
	store      repositories.Store
	requestTTL time.Duration
}

func NewFriendService(store repositories.Store, requestTTL time.Duration) *FriendService {
	if requestTTL <= 0 {
		requestTTL = models.FriendRequestTTL
	}
	return &FriendService{store: store, requestTTL: requestTTL}
}

// SendRequest creates a pending request from sender to receiver and
// notifies the receiver. At most one pending request may exist between the
// two users in either direction; the storage layer's unique index backs the
// check, so concurrent opposite-direction sends cannot both succeed.
func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID uint) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, errors.New(errors.ErrCodeSelfRequest, "cannot send a friend request to yourself")
	}

	var created *models.FriendRequest
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		sender, err := tx.Users().GetByID(ctx, senderID)
		if err != nil {
			return err
		}
		if sender == nil {
			return errors.New(errors.ErrCodeNotFound, "sender not found")
		}

		receiver, err := tx.Users().GetByID(ctx, receiverID)
		if err != nil {
			return err
		}
		if receiver == nil {
			return errors.New(errors.ErrCodeNotFound, "user not found")
		}

		friends, err := tx.Friendships().AreFriends(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if friends {
			return errors.New(errors.ErrCodeAlreadyFriends, "users are already friends")
		}

		pending, err := tx.FriendRequests().HasPendingBetween(ctx, senderID, receiverID)
		if err != nil {
			return err
		}
		if pending {
			return errors.New(errors.ErrCodeDuplicateRequest, "a pending friend request already exists between these users")
		}

		now := time.Now().UTC()
		request := &models.FriendRequest{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Status:     models.FriendRequestStatusPending,
			CreatedAt:  now,
			ExpiresAt:  now.Add(s.requestTTL),
		}
		if err := tx.FriendRequests().Create(ctx, request); err != nil {
			return err
		}

		notification := &models.Notification{
			UserID:          receiverID,
			Type:            models.NotificationTypeFriendRequestReceived,
			Message:         fmt.Sprintf("%s sent you a friend request", security.SanitizeHTML(sender.Username)),
			FriendRequestID: &request.ID,
		}
		if err := tx.Notifications().Create(ctx, notification); err != nil {
			return err
		}

		created = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ListRequests returns every request the user sent and every request the
// user received, regardless of status, in id order. Status filtering is the
// caller's concern.
func (s *FriendService) ListRequests(ctx context.Context, userID uint) (sent, received []models.FriendRequest, err error) {
	sent, err = s.store.FriendRequests().ListBySender(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	received, err = s.store.FriendRequests().ListByReceiver(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return sent, received, nil
}

// Accept transitions a pending request to accepted, materializes the
// friendship and notifies the sender. Only the receiver may accept.
//
// A request past its expiry that the sweep has not visited yet is not
// acceptable: it is marked expired in place and the call fails with an
// invalid-state error. The expiry write commits on its own.
func (s *FriendService) Accept(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error) {
	var accepted *models.FriendRequest
	var expiredOnAccept bool

	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		request, err := s.loadRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if request.ReceiverID != actingUserID {
			return errors.New(errors.ErrCodeWrongActor, "only the receiver may accept a friend request")
		}
		if !request.Pending() {
			return errors.New(errors.ErrCodeInvalidState, "friend request is not pending")
		}

		if time.Now().UTC().After(request.ExpiresAt) {
			request.Status = models.FriendRequestStatusExpired
			if err := tx.FriendRequests().Save(ctx, request); err != nil {
				return err
			}
			expiredOnAccept = true
			return nil
		}

		request.Status = models.FriendRequestStatusAccepted
		if err := tx.FriendRequests().Save(ctx, request); err != nil {
			return err
		}

		if _, err := tx.Friendships().Create(ctx, request.SenderID, request.ReceiverID); err != nil {
			return err
		}

		// The receiver acted on the request; their received notification is
		// no longer actionable.
		if err := tx.Notifications().DeleteByRequestAndUser(ctx, request.ID, request.ReceiverID); err != nil {
			return err
		}

		receiver, err := tx.Users().GetByID(ctx, request.ReceiverID)
		if err != nil {
			return err
		}
		receiverName := "Someone"
		if receiver != nil {
			receiverName = security.SanitizeHTML(receiver.Username)
		}

		notification := &models.Notification{
			UserID:          request.SenderID,
			Type:            models.NotificationTypeFriendRequestAccepted,
			Message:         fmt.Sprintf("%s accepted your friend request", receiverName),
			FriendRequestID: &request.ID,
		}
		if err := tx.Notifications().Create(ctx, notification); err != nil {
			return err
		}

		accepted = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	if expiredOnAccept {
		return nil, errors.New(errors.ErrCodeInvalidState, "friend request has expired")
	}
	return accepted, nil
}

// Deny transitions a pending request to denied. Only the receiver may deny;
// the sender is not notified.
func (s *FriendService) Deny(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error) {
	var denied *models.FriendRequest
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		request, err := s.loadRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if request.ReceiverID != actingUserID {
			return errors.New(errors.ErrCodeWrongActor, "only the receiver may deny a friend request")
		}
		if !request.Pending() {
			return errors.New(errors.ErrCodeInvalidState, "friend request is not pending")
		}

		request.Status = models.FriendRequestStatusDenied
		if err := tx.FriendRequests().Save(ctx, request); err != nil {
			return err
		}

		if err := tx.Notifications().DeleteByRequestAndUser(ctx, request.ID, request.ReceiverID); err != nil {
			return err
		}

		denied = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return denied, nil
}

// Cancel transitions a pending request to cancelled. Only the sender may
// cancel.
func (s *FriendService) Cancel(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error) {
	var cancelled *models.FriendRequest
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		request, err := s.loadRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if request.SenderID != actingUserID {
			return errors.New(errors.ErrCodeWrongActor, "only the sender may cancel a friend request")
		}
		if !request.Pending() {
			return errors.New(errors.ErrCodeInvalidState, "friend request is not pending")
		}

		request.Status = models.FriendRequestStatusCancelled
		if err := tx.FriendRequests().Save(ctx, request); err != nil {
			return err
		}

		cancelled = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// ExpireSweep transitions every pending request whose expiry precedes now
// to expired and returns the number of rows changed. It is the only place
// expiration is enforced in bulk and must be invoked by an external
// scheduler; nothing in this service triggers it implicitly. Re-running
// with the same now affects zero further rows.
func (s *FriendService) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		var err error
		count, err = tx.FriendRequests().ExpirePending(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AddFriendship creates the friendship directly, bypassing the request
// lifecycle. Administrative path; idempotent like the registry itself.
func (s *FriendService) AddFriendship(ctx context.Context, a, b uint) (*models.Friendship, error) {
	var friendship *models.Friendship
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		var err error
		friendship, err = tx.Friendships().Create(ctx, a, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return friendship, nil
}

// AreFriends reports whether the two users share a friendship. Symmetric in
// its arguments.
func (s *FriendService) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	return s.store.Friendships().AreFriends(ctx, a, b)
}

// ListFriends resolves every user connected to userID through a friendship
// row, in either member slot.
func (s *FriendService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	ids, err := s.store.Friendships().ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Users().GetByIDs(ctx, ids)
}

// Unfriend removes the friendship between the two users. Either member may
// call it; the relation disappears for both. Returns whether a row was
// removed.
func (s *FriendService) Unfriend(ctx context.Context, userID, friendID uint) (bool, error) {
	var removed bool
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		var err error
		removed, err = tx.Friendships().Remove(ctx, userID, friendID)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// loadRequest resolves the request or fails with not-found. Callers check
// the actor before the status: a non-party must get an authorization
// failure, never a hint about the request's state.
func (s *FriendService) loadRequest(ctx context.Context, tx repositories.Store, requestID uint) (*models.FriendRequest, error) {
	request, err := tx.FriendRequests().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "friend request not found")
	}
	return request, nil
}

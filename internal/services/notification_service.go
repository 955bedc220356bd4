package services

import (
	"context"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/internal/repositories"
	"github.com/omnitrackr/omnitrackr-api/internal/security"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
)

// NotificationService manages each user's notification feed. Notifications
// are strictly per-recipient: every read or mutation is scoped by owner, so
// one user can never see or touch another user's entries.
type NotificationService struct {
	store repositories.Store
}

func NewNotificationService(store repositories.Store) *NotificationService {
	return &NotificationService{store: store}
}

// Create appends a notification to the recipient's feed. The message is
// sanitized before storage since it may embed user-supplied text.
func (s *NotificationService) Create(ctx context.Context, userID uint, notificationType, message string, friendRequestID *uint) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:          userID,
		Type:            notificationType,
		Message:         security.SanitizeHTML(message),
		FriendRequestID: friendRequestID,
	}
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		return tx.Notifications().Create(ctx, notification)
	})
	if err != nil {
		return nil, err
	}
	return notification, nil
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	return s.store.Notifications().ListByUser(ctx, userID)
}

// UnreadCount returns how many of the user's notifications are unread.
func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, userID)
}

// MarkRead marks the notification read for its owner. Marking an already
// read notification again keeps the original read timestamp. A notification
// that does not exist or belongs to someone else yields the same not-found
// error, so ownership cannot be probed by id.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID uint) (*models.Notification, error) {
	var marked *models.Notification
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		notification, err := tx.Notifications().GetOwned(ctx, notificationID, userID)
		if err != nil {
			return err
		}
		if notification == nil {
			return errors.New(errors.ErrCodeNotFound, "notification not found")
		}
		if notification.Read() {
			marked = notification
			return nil
		}
		notification.MarkRead()
		if err := tx.Notifications().Save(ctx, notification); err != nil {
			return err
		}
		marked = notification
		return nil
	})
	if err != nil {
		return nil, err
	}
	return marked, nil
}

// Delete removes the notification if it belongs to the user. Returns
// whether a row was removed.
func (s *NotificationService) Delete(ctx context.Context, notificationID, userID uint) (bool, error) {
	var removed bool
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		var err error
		removed, err = tx.Notifications().Delete(ctx, notificationID, userID)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

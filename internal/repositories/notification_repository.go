package repositories

import (
	"context"
	"errors"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	apperrors "github.com/omnitrackr/omnitrackr-api/pkg/errors"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uint) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	GetOwned(ctx context.Context, id, userID uint) (*models.Notification, error)
	Save(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, id, userID uint) (bool, error)
	DeleteByRequestAndUser(ctx context.Context, requestID, userID uint) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to create notification")
	}
	return nil
}

// ListByUser returns the user's notifications newest first. The id tiebreak
// keeps the order total when created_at collides.
func (r *notificationRepository) ListByUser(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to list notifications")
	}
	return notifications, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to count unread notifications")
	}
	return count, nil
}

func (r *notificationRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to load notification")
	}
	return &notification, nil
}

func (r *notificationRepository) Save(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Save(notification).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to update notification")
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, apperrors.ErrCodeInternalError, "failed to delete notification")
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) DeleteByRequestAndUser(ctx context.Context, requestID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("friend_request_id = ? AND user_id = ?", requestID, userID).
		Delete(&models.Notification{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to delete request notification")
	}
	return nil
}

func (r *notificationRepository) DeleteByUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Notification{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to delete user's notifications")
	}
	return nil
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	apperrors "github.com/omnitrackr/omnitrackr-api/pkg/errors"
	"gorm.io/gorm"
)

type FriendRequestRepository interface {
	Create(ctx context.Context, req *models.FriendRequest) error
	GetByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	ListBySender(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	ListByReceiver(ctx context.Context, userID uint) ([]models.FriendRequest, error)
	HasPendingBetween(ctx context.Context, a, b uint) (bool, error)
	Save(ctx context.Context, req *models.FriendRequest) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type friendRequestRepository struct {
	db *gorm.DB
}

func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

func (r *friendRequestRepository) Create(ctx context.Context, req *models.FriendRequest) error {
	err := r.db.WithContext(ctx).Create(req).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The partial unique index on the pending pair fired: another
		// pending request already exists between these two users.
		return apperrors.New(apperrors.ErrCodeDuplicateRequest, "a pending friend request already exists between these users")
	}
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to create friend request")
	}
	return nil
}

func (r *friendRequestRepository) GetByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to load friend request")
	}
	return &req, nil
}

func (r *friendRequestRepository) ListBySender(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", userID).
		Order("id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to list sent requests")
	}
	return requests, nil
}

func (r *friendRequestRepository) ListByReceiver(ctx context.Context, userID uint) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("receiver_id = ?", userID).
		Order("id ASC").
		Find(&requests).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to list received requests")
	}
	return requests, nil
}

func (r *friendRequestRepository) HasPendingBetween(ctx context.Context, a, b uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
			a, b, b, a, models.FriendRequestStatusPending).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to check pending requests")
	}
	return count > 0, nil
}

func (r *friendRequestRepository) Save(ctx context.Context, req *models.FriendRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to update friend request")
	}
	return nil
}

func (r *friendRequestRepository) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("status = ? AND expires_at < ?", models.FriendRequestStatusPending, now).
		Update("status", models.FriendRequestStatusExpired)
	if result.Error != nil {
		return 0, apperrors.Wrap(result.Error, apperrors.ErrCodeInternalError, "failed to expire friend requests")
	}
	return result.RowsAffected, nil
}

func (r *friendRequestRepository) DeleteByUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.FriendRequest{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to delete user's friend requests")
	}
	return nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	apperrors "github.com/omnitrackr/omnitrackr-api/pkg/errors"
	"gorm.io/gorm"
)

type FriendshipRepository interface {
	Create(ctx context.Context, a, b uint) (*models.Friendship, error)
	AreFriends(ctx context.Context, a, b uint) (bool, error)
	ListFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	Remove(ctx context.Context, a, b uint) (bool, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

// Create stores the undirected edge between a and b. Arguments are
// canonicalized here, never by the caller, so the unique index on
// (user1_id, user2_id) holds regardless of call order. Creating an
// existing friendship returns the stored row.
func (r *friendshipRepository) Create(ctx context.Context, a, b uint) (*models.Friendship, error) {
	if a == b {
		return nil, apperrors.New(apperrors.ErrCodeValidationFailed, "cannot create a friendship with yourself")
	}

	user1, user2 := models.CanonicalPair(a, b)

	var friendship models.Friendship
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		First(&friendship).Error
	if err == nil {
		return &friendship, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to look up friendship")
	}

	friendship = models.Friendship{User1ID: user1, User2ID: user2}
	err = r.db.WithContext(ctx).Create(&friendship).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race against a concurrent create for the same pair; the
		// unique index guarantees exactly one row, so fetch it.
		err = r.db.WithContext(ctx).
			Where("user1_id = ? AND user2_id = ?", user1, user2).
			First(&friendship).Error
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to create friendship")
	}
	return &friendship, nil
}

func (r *friendshipRepository) AreFriends(ctx context.Context, a, b uint) (bool, error) {
	user1, user2 := models.CanonicalPair(a, b)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to check friendship")
	}
	return count > 0, nil
}

func (r *friendshipRepository) ListFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("id ASC").
		Find(&friendships).Error
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to list friendships")
	}

	ids := make([]uint, 0, len(friendships))
	for _, f := range friendships {
		if f.User1ID == userID {
			ids = append(ids, f.User2ID)
		} else {
			ids = append(ids, f.User1ID)
		}
	}
	return ids, nil
}

func (r *friendshipRepository) Remove(ctx context.Context, a, b uint) (bool, error) {
	user1, user2 := models.CanonicalPair(a, b)

	result := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return false, apperrors.Wrap(result.Error, apperrors.ErrCodeInternalError, "failed to remove friendship")
	}
	return result.RowsAffected > 0, nil
}

func (r *friendshipRepository) DeleteByUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Delete(&models.Friendship{}).Error
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to delete user's friendships")
	}
	return nil
}

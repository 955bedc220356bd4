package services

import (
	"context"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/internal/repositories"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
)

// PrivacyService is the gate every cross-user content read passes through.
// A viewer sees a target's category only when the target exists and is
// active, the two are friends, and the target has not flagged the category
// private. The owner always sees their own content.
type PrivacyService struct {
	store repositories.Store
}

func NewPrivacyService(store repositories.Store) *PrivacyService {
	return &PrivacyService{store: store}
}

// Authorize decides whether viewerID may see targetID's category and
// returns the target on success. Denial reasons are checked in a fixed
// order: unknown category, target missing, not friends, target deactivated,
// category flagged private. A deactivated target reads as not found so
// deactivation is indistinguishable from deletion to other users.
func (s *PrivacyService) Authorize(ctx context.Context, viewerID, targetID uint, category models.PrivacyCategory) (*models.User, error) {
	if !models.ValidCategory(category) {
		return nil, errors.New(errors.ErrCodeValidationFailed, "unknown privacy category")
	}

	target, err := s.store.Users().GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}

	if viewerID == targetID {
		return target, nil
	}

	friends, err := s.store.Friendships().AreFriends(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if !friends {
		return nil, errors.New(errors.ErrCodeNotFriends, "you are not friends with this user")
	}

	if !target.IsActive {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}

	if target.Private(category) {
		return nil, errors.New(errors.ErrCodeCategoryPrivate, "this user has made this category private")
	}

	return target, nil
}

// Summary returns the target plus, for each known category, whether the
// viewer may see it. Viewing a profile at all requires friendship (or
// self), under the same existence and activity rules as Authorize.
func (s *PrivacyService) Summary(ctx context.Context, viewerID, targetID uint) (*models.User, map[models.PrivacyCategory]bool, error) {
	target, err := s.store.Users().GetByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if target == nil {
		return nil, nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}

	if viewerID != targetID {
		friends, err := s.store.Friendships().AreFriends(ctx, viewerID, targetID)
		if err != nil {
			return nil, nil, err
		}
		if !friends {
			return nil, nil, errors.New(errors.ErrCodeNotFriends, "you are not friends with this user")
		}
		if !target.IsActive {
			return nil, nil, errors.New(errors.ErrCodeNotFound, "user not found")
		}
	}

	visible := make(map[models.PrivacyCategory]bool, len(models.PrivacyCategories))
	for _, category := range models.PrivacyCategories {
		if viewerID == targetID {
			visible[category] = true
			continue
		}
		visible[category] = !target.Private(category)
	}
	return target, visible, nil
}

package services

import (
	"context"
	"strconv"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/internal/repositories"
	"github.com/omnitrackr/omnitrackr-api/internal/security"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
	"github.com/omnitrackr/omnitrackr-api/pkg/logger"
)

// AccountService covers the user directory: lookups, privacy settings and
// account deletion with its social-graph cascade.
type AccountService struct {
	store repositories.Store
}

func NewAccountService(store repositories.Store) *AccountService {
	return &AccountService{store: store}
}

// Resolve looks a user up by numeric id or, failing that, by username.
func (s *AccountService) Resolve(ctx context.Context, idOrUsername string) (*models.User, error) {
	idOrUsername = security.SanitizeString(idOrUsername)
	if idOrUsername == "" {
		return nil, errors.New(errors.ErrCodeValidationFailed, "user identifier is required")
	}

	var user *models.User
	var err error
	if id, convErr := strconv.ParseUint(idOrUsername, 10, 64); convErr == nil {
		user, err = s.store.Users().GetByID(ctx, uint(id))
	} else {
		user, err = s.store.Users().GetByUsername(ctx, idOrUsername)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return user, nil
}

// Get returns the user by id.
func (s *AccountService) Get(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return user, nil
}

// UpdatePrivacySettings applies the provided per-category flags to the
// user's profile. Fields left nil in settings are untouched.
func (s *AccountService) UpdatePrivacySettings(ctx context.Context, userID uint, settings models.PrivacySettings) (*models.User, error) {
	var updated *models.User
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New(errors.ErrCodeNotFound, "user not found")
		}
		settings.Apply(user)
		if err := tx.Users().Save(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteAccount removes the user and every trace of them in the social
// graph: their notifications, every friend request they sent or received,
// and every friendship they belong to, all in one transaction.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	err := s.store.InTransaction(ctx, func(tx repositories.Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New(errors.ErrCodeNotFound, "user not found")
		}
		if err := tx.Notifications().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.FriendRequests().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Friendships().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return err
	}
	logger.Info("Account deleted", "user_id", userID)
	return nil
}

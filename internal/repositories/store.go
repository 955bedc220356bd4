package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories behind a single transaction boundary.
// Every public mutating operation in the services layer runs through
// InTransaction so its row mutations commit or roll back together.
type Store interface {
	Users() UserRepository
	FriendRequests() FriendRequestRepository
	Friendships() FriendshipRepository
	Notifications() NotificationRepository

	// InTransaction runs fn against a Store bound to one database
	// transaction. Returning an error rolls everything back.
	InTransaction(ctx context.Context, fn func(Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *gormStore) FriendRequests() FriendRequestRepository {
	return &friendRequestRepository{db: s.db}
}

func (s *gormStore) Friendships() FriendshipRepository {
	return &friendshipRepository{db: s.db}
}

func (s *gormStore) Notifications() NotificationRepository {
	return &notificationRepository{db: s.db}
}

func (s *gormStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

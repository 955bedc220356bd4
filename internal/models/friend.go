package models

import (
	"time"

	"gorm.io/gorm"
)

type FriendRequest struct {
	ID         uint      `gorm:"primaryKey"`
	SenderID   uint      `gorm:"not null;index"`
	ReceiverID uint      `gorm:"not null;index"`
	Status     string    `gorm:"type:varchar(20);default:'pending';not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null"`
}

// Friend request status constants. Pending is the only non-terminal state.
const (
	FriendRequestStatusPending   = "pending"
	FriendRequestStatusAccepted  = "accepted"
	FriendRequestStatusDenied    = "denied"
	FriendRequestStatusCancelled = "cancelled"
	FriendRequestStatusExpired   = "expired"
)

// FriendRequestTTL is how long a request stays acceptable after creation.
const FriendRequestTTL = 30 * 24 * time.Hour

func (FriendRequest) TableName() string {
	return "friend_requests"
}

// Pending reports whether the request can still be acted on.
func (f *FriendRequest) Pending() bool {
	return f.Status == FriendRequestStatusPending
}

// BeforeSave hook for validation
func (f *FriendRequest) BeforeSave(tx *gorm.DB) error {
	if f.SenderID == f.ReceiverID {
		return gorm.ErrInvalidData
	}

	validStatuses := map[string]bool{
		FriendRequestStatusPending:   true,
		FriendRequestStatusAccepted:  true,
		FriendRequestStatusDenied:    true,
		FriendRequestStatusCancelled: true,
		FriendRequestStatusExpired:   true,
	}
	if !validStatuses[f.Status] {
		return gorm.ErrInvalidData
	}

	return nil
}

// Friendship is an undirected edge stored once: User1ID is always the
// smaller member id, so the unique index on the pair holds regardless of
// which side initiated.
type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	User1ID   uint      `gorm:"not null;index:idx_friendship_pair,unique"`
	User2ID   uint      `gorm:"not null;index:idx_friendship_pair,unique"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Friendship) TableName() string {
	return "friendships"
}

// BeforeSave rejects self-edges and rows that bypassed canonicalization.
func (f *Friendship) BeforeSave(tx *gorm.DB) error {
	if f.User1ID == f.User2ID {
		return gorm.ErrInvalidData
	}
	if f.User1ID > f.User2ID {
		return gorm.ErrInvalidData
	}
	return nil
}

// CanonicalPair orders two member ids as they are stored.
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

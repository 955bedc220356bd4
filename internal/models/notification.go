package models

import (
	"time"
)

type Notification struct {
	ID              uint       `gorm:"primaryKey"`
	UserID          uint       `gorm:"not null;index"`
	Type            string     `gorm:"type:varchar(50);not null"`
	Message         string     `gorm:"type:varchar(500);not null"`
	FriendRequestID *uint      `gorm:"index"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index"`
	ReadAt          *time.Time `gorm:"default:NULL"`
}

// Notification type constants. The set is open; these are the ones the
// friend request lifecycle emits.
const (
	NotificationTypeFriendRequestReceived = "friend_request_received"
	NotificationTypeFriendRequestAccepted = "friend_request_accepted"
)

func (Notification) TableName() string {
	return "notifications"
}

// Read reports whether the notification has been marked read.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

// MarkRead stamps the notification read at the current time. Calling it on
// an already read notification keeps the original timestamp.
func (n *Notification) MarkRead() {
	if n.ReadAt != nil {
		return
	}
	now := time.Now().UTC()
	n.ReadAt = &now
}

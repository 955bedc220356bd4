package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
	"github.com/omnitrackr/omnitrackr-api/pkg/logger"
)

// ErrorResponse is the error envelope every endpoint returns on failure.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func statusForCode(code string) int {
	switch code {
	case errors.ErrCodeValidationFailed, errors.ErrCodeSelfRequest, errors.ErrCodeInvalidState:
		return fiber.StatusBadRequest
	case errors.ErrCodeDuplicateRequest, errors.ErrCodeAlreadyFriends:
		return fiber.StatusConflict
	case errors.ErrCodeWrongActor, errors.ErrCodeNotFriends, errors.ErrCodeCategoryPrivate, errors.ErrCodeForbidden:
		return fiber.StatusForbidden
	case errors.ErrCodeNotFound:
		return fiber.StatusNotFound
	case errors.ErrCodeUnauthorized:
		return fiber.StatusUnauthorized
	case errors.ErrCodeRateLimitExceeded:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// fail maps a service error onto the envelope. Unexpected errors are logged
// and masked; expected ones carry their code and message through.
func fail(c *fiber.Ctx, err error) error {
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code == errors.ErrCodeInternalError {
		logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error: true, Code: errors.ErrCodeInternalError, Message: "internal server error",
		})
	}
	return c.Status(statusForCode(appErr.Code)).JSON(ErrorResponse{
		Error: true, Code: appErr.Code, Message: appErr.Message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: true, Code: errors.ErrCodeValidationFailed, Message: message,
	})
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}

// FriendRequestResponse is the wire shape of a friend request.
type FriendRequestResponse struct {
	ID         uint      `json:"id"`
	SenderID   uint      `json:"sender_id"`
	ReceiverID uint      `json:"receiver_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func toFriendRequestResponse(r *models.FriendRequest) FriendRequestResponse {
	return FriendRequestResponse{
		ID:         r.ID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		ExpiresAt:  r.ExpiresAt,
	}
}

// NotificationResponse is the wire shape of a notification.
type NotificationResponse struct {
	ID              uint       `json:"id"`
	Type            string     `json:"type"`
	Message         string     `json:"message"`
	FriendRequestID *uint      `json:"friend_request_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
}

func toNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:              n.ID,
		Type:            n.Type,
		Message:         n.Message,
		FriendRequestID: n.FriendRequestID,
		CreatedAt:       n.CreatedAt,
		ReadAt:          n.ReadAt,
	}
}

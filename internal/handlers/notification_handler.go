package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/omnitrackr/omnitrackr-api/internal/middleware"
	"github.com/omnitrackr/omnitrackr-api/internal/services"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// List handles GET /api/notifications.
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	feed, err := h.notifications.List(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	out := make([]NotificationResponse, 0, len(feed))
	for i := range feed {
		out = append(out, toNotificationResponse(&feed[i]))
	}
	return c.JSON(fiber.Map{"notifications": out})
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(c *fiber.Ctx) error {
	count, err := h.notifications.UnreadCount(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": count})
}

// MarkRead handles POST /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	notificationID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	notification, err := h.notifications.MarkRead(c.Context(), notificationID, middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toNotificationResponse(notification))
}

// Delete handles DELETE /api/notifications/:id.
func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	notificationID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid notification id")
	}

	removed, err := h.notifications.Delete(c.Context(), notificationID, middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	if !removed {
		return fail(c, errors.New(errors.ErrCodeNotFound, "notification not found"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

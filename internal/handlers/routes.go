package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/omnitrackr/omnitrackr-api/internal/config"
	"github.com/omnitrackr/omnitrackr-api/internal/middleware"
)

// Setup mounts the API surface. Everything except the health check sits
// behind authentication and the per-user/per-IP rate limiter.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	friendHandler *FriendHandler,
	notificationHandler *NotificationHandler,
	accountHandler *AccountHandler,
) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.RateLimitPerIP, time.Minute)
	protected := api.Group("/", middleware.Auth(cfg.JWTSecret), limiter.Handler())

	friends := protected.Group("/friends")
	friends.Post("/request", friendHandler.SendRequest)
	friends.Get("/requests", friendHandler.ListRequests)
	friends.Post("/requests/:id/accept", friendHandler.Accept)
	friends.Post("/requests/:id/deny", friendHandler.Deny)
	friends.Post("/requests/:id/cancel", friendHandler.Cancel)
	friends.Get("/", friendHandler.ListFriends)
	friends.Delete("/:id", friendHandler.Unfriend)

	users := protected.Group("/users")
	users.Get("/:id/profile", accountHandler.Profile)
	users.Get("/:id/categories/:category", accountHandler.Category)

	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
	notifications.Delete("/:id", notificationHandler.Delete)

	settings := protected.Group("/settings")
	settings.Get("/privacy", accountHandler.GetPrivacySettings)
	settings.Put("/privacy", accountHandler.UpdatePrivacySettings)

	protected.Delete("/account", accountHandler.DeleteAccount)
}

package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/omnitrackr/omnitrackr-api/internal/security"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
)

const (
	// LocalsUserID is the fiber locals key carrying the authenticated
	// user's id after Auth has run.
	LocalsUserID = "user_id"
	// LocalsUsername carries the authenticated user's username.
	LocalsUsername = "username"
)

// Auth validates the Bearer token and stashes the caller's identity in the
// request locals. Every route behind it can assume an authenticated user.
func Auth(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return unauthorized(c, "missing authorization header")
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return unauthorized(c, "malformed authorization header")
		}

		claims, err := security.ValidateJWT(token, jwtSecret)
		if err != nil {
			return unauthorized(c, "invalid or expired token")
		}

		c.Locals(LocalsUserID, claims.UserID)
		c.Locals(LocalsUsername, claims.Username)
		return c.Next()
	}
}

// UserID returns the authenticated user's id from the request locals. Zero
// means Auth did not run, which is a routing bug.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalsUserID).(uint)
	return id
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   true,
		"code":    errors.ErrCodeUnauthorized,
		"message": message,
	})
}

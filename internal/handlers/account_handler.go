package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/omnitrackr/omnitrackr-api/internal/middleware"
	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/internal/services"
)

type AccountHandler struct {
	accounts *services.AccountService
	privacy  *services.PrivacyService
}

func NewAccountHandler(accounts *services.AccountService, privacy *services.PrivacyService) *AccountHandler {
	return &AccountHandler{accounts: accounts, privacy: privacy}
}

// Profile handles GET /api/users/:id/profile. Friendship and activity rules
// apply; the response says which categories the caller may fetch.
func (h *AccountHandler) Profile(c *fiber.Ctx) error {
	targetID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	target, visible, err := h.privacy.Summary(c.Context(), middleware.UserID(c), targetID)
	if err != nil {
		return fail(c, err)
	}

	categories := make(map[string]bool, len(visible))
	for category, ok := range visible {
		categories[string(category)] = ok
	}
	return c.JSON(fiber.Map{
		"user":       toUserResponse(target),
		"categories": categories,
	})
}

// Category handles GET /api/users/:id/categories/:category. It is the
// authorization gate content endpoints sit behind; a success response means
// the caller may fetch the target's collection for that category.
func (h *AccountHandler) Category(c *fiber.Ctx) error {
	targetID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	category := models.PrivacyCategory(c.Params("category"))

	target, err := h.privacy.Authorize(c.Context(), middleware.UserID(c), targetID, category)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"user":     toUserResponse(target),
		"category": string(category),
		"visible":  true,
	})
}

// GetPrivacySettings handles GET /api/settings/privacy.
func (h *AccountHandler) GetPrivacySettings(c *fiber.Ctx) error {
	user, err := h.accounts.Get(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(privacySettingsResponse(user))
}

// UpdatePrivacySettings handles PUT /api/settings/privacy. Absent fields
// are left as they are.
func (h *AccountHandler) UpdatePrivacySettings(c *fiber.Ctx) error {
	var settings models.PrivacySettings
	if err := c.BodyParser(&settings); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := h.accounts.UpdatePrivacySettings(c.Context(), middleware.UserID(c), settings)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(privacySettingsResponse(user))
}

// DeleteAccount handles DELETE /api/account. The user and their whole
// social footprint go together.
func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.accounts.DeleteAccount(c.Context(), middleware.UserID(c)); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func privacySettingsResponse(u *models.User) fiber.Map {
	flags := make(map[string]bool, len(models.PrivacyCategories))
	for _, category := range models.PrivacyCategories {
		flags[string(category)+"_private"] = u.Private(category)
	}
	return fiber.Map{"privacy": flags}
}

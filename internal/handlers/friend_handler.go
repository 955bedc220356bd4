package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/omnitrackr/omnitrackr-api/internal/middleware"
	"github.com/omnitrackr/omnitrackr-api/internal/models"
	"github.com/omnitrackr/omnitrackr-api/internal/services"
	"github.com/omnitrackr/omnitrackr-api/pkg/errors"
)

type FriendHandler struct {
	friends  *services.FriendService
	accounts *services.AccountService
}

func NewFriendHandler(friends *services.FriendService, accounts *services.AccountService) *FriendHandler {
	return &FriendHandler{friends: friends, accounts: accounts}
}

type sendRequestBody struct {
	// Either a numeric user id or a username.
	User string `json:"user"`
}

// SendRequest handles POST /api/friends/request.
func (h *FriendHandler) SendRequest(c *fiber.Ctx) error {
	var body sendRequestBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.User == "" {
		return badRequest(c, "user is required")
	}

	receiver, err := h.accounts.Resolve(c.Context(), body.User)
	if err != nil {
		return fail(c, err)
	}

	request, err := h.friends.SendRequest(c.Context(), middleware.UserID(c), receiver.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toFriendRequestResponse(request))
}

// ListRequests handles GET /api/friends/requests.
func (h *FriendHandler) ListRequests(c *fiber.Ctx) error {
	sent, received, err := h.friends.ListRequests(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}

	sentOut := make([]FriendRequestResponse, 0, len(sent))
	for i := range sent {
		sentOut = append(sentOut, toFriendRequestResponse(&sent[i]))
	}
	receivedOut := make([]FriendRequestResponse, 0, len(received))
	for i := range received {
		receivedOut = append(receivedOut, toFriendRequestResponse(&received[i]))
	}

	return c.JSON(fiber.Map{"sent": sentOut, "received": receivedOut})
}

// Accept handles POST /api/friends/requests/:id/accept.
func (h *FriendHandler) Accept(c *fiber.Ctx) error {
	return h.transition(c, h.friends.Accept)
}

// Deny handles POST /api/friends/requests/:id/deny.
func (h *FriendHandler) Deny(c *fiber.Ctx) error {
	return h.transition(c, h.friends.Deny)
}

// Cancel handles POST /api/friends/requests/:id/cancel.
func (h *FriendHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.friends.Cancel)
}

func (h *FriendHandler) transition(c *fiber.Ctx, op func(ctx context.Context, requestID, actingUserID uint) (*models.FriendRequest, error)) error {
	requestID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid request id")
	}

	request, err := op(c.Context(), requestID, middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(toFriendRequestResponse(request))
}

// ListFriends handles GET /api/friends.
func (h *FriendHandler) ListFriends(c *fiber.Ctx) error {
	friends, err := h.friends.ListFriends(c.Context(), middleware.UserID(c))
	if err != nil {
		return fail(c, err)
	}
	out := make([]UserResponse, 0, len(friends))
	for i := range friends {
		out = append(out, toUserResponse(&friends[i]))
	}
	return c.JSON(fiber.Map{"friends": out})
}

// Unfriend handles DELETE /api/friends/:id.
func (h *FriendHandler) Unfriend(c *fiber.Ctx) error {
	friendID, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	removed, err := h.friends.Unfriend(c.Context(), middleware.UserID(c), friendID)
	if err != nil {
		return fail(c, err)
	}
	if !removed {
		return fail(c, errors.New(errors.ErrCodeNotFriends, "you are not friends with this user"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func pathID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}

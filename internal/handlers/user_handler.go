package handlers

import (
	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/middleware"
	"github.com/Smear6uard/CloseOut/internal/models"
	"github.com/Smear6uard/CloseOut/internal/services"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService *services.UserService
	authz       *services.AuthzService
}

func NewUserHandler(userService *services.UserService, authz *services.AuthzService) *UserHandler {
	return &UserHandler{userService: userService, authz: authz}
}

// currentUser resolves the caller's User record from the verified JWT.
// Ownership of every resource is re-checked downstream on each call.
func currentUser(c *fiber.Ctx, authz *services.AuthzService) (*models.User, error) {
	tokenIdentifier, err := middleware.TokenIdentifier(c)
	if err != nil {
		return nil, services.ErrNotAuthenticated
	}
	return authz.ResolveUser(tokenIdentifier)
}

// Sync handles POST /users/sync — the first-login upsert.
func (h *UserHandler) Sync(c *fiber.Ctx) error {
	tokenIdentifier, err := middleware.TokenIdentifier(c)
	if err != nil {
		return serviceError(c, services.ErrNotAuthenticated)
	}

	var req dto.SyncUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	user, err := h.userService.Sync(tokenIdentifier, &req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(user)
}

func (h *UserHandler) Usage(c *fiber.Ctx) error {
	user, err := currentUser(c, h.authz)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(h.userService.Usage(user))
}

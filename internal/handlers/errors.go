package handlers

import (
	"errors"

	"github.com/Smear6uard/CloseOut/internal/dto"
	"github.com/Smear6uard/CloseOut/internal/services"
	"github.com/gofiber/fiber/v2"
)

// serviceError maps service sentinel errors to HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	var status int
	switch {
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, services.ErrUserNotFound):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = fiber.StatusForbidden
	case errors.Is(err, services.ErrProjectNotFound), errors.Is(err, services.ErrItemNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidTransition):
		status = fiber.StatusBadRequest
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
}

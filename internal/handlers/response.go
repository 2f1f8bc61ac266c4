package handlers

import (
	"errors"

	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	return c.Status(status).JSON(Response{Success: true, Message: message, Data: data})
}

func respondError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Response{Success: false, Message: message})
}

// respondDomainError maps a domain error onto the HTTP taxonomy: validation
// and conflict-class failures are 400, bad credentials 401, missing
// resources 404, anything unrecognized 500.
func respondDomainError(c *fiber.Ctx, err error) error {
	return respondError(c, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrOutOfStock),
		errors.Is(err, models.ErrInvalidOrderState),
		errors.Is(err, models.ErrInvalidOrderStatus):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrOrderNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

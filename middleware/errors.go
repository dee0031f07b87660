package middleware

import (
	"errors"
	"internhub/models"
	"log"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrNotModifiable),
		errors.Is(err, models.ErrAlreadyClaimed):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

// ErrorResponse writes err in the JSON envelope. Infrastructure errors are
// logged and hidden behind a generic message.
func ErrorResponse(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	if code == fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
		return JsonResponse(c, code, false, "Something went wrong, please try again later", nil)
	}
	return JsonResponse(c, code, false, models.Message(err), nil)
}

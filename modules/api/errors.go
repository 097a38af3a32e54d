package api

import (
	"log"

	"github.com/example/beverage-storefront/domain/apperror"
	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInvalidInput:
		return fiber.StatusBadRequest
	case apperror.KindConflict:
		return fiber.StatusConflict
	case apperror.KindInvalidState:
		return fiber.StatusUnprocessableEntity
	case apperror.KindForbidden:
		return fiber.StatusForbidden
	case apperror.KindUnauthorized:
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError renders err. Internal errors are logged and replaced by a
// generic message unless development details are enabled.
func (h *Handlers) writeError(c *fiber.Ctx, err error) error {
	appErr := apperror.Parse(err)
	status := statusFor(appErr.Kind)

	if status == fiber.StatusInternalServerError {
		log.Printf("[api] Internal error on %s %s: %v", c.Method(), c.Path(), err)
		resp := ErrorResponse{
			Error:   string(apperror.KindInternal),
			Message: "An internal error occurred",
		}
		if h.development {
			resp.Detail = err.Error()
		}
		return c.Status(status).JSON(resp)
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:   string(appErr.Kind),
		Message: appErr.Message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   string(apperror.KindInvalidInput),
		Message: message,
	})
}

// customErrorHandler handles errors returned by fiber itself.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

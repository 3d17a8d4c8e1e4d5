package middleware

import (
	"errors"

	"folio-backend/internal/apperrors"
	"folio-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler is the global error handler. Maps application errors to their
// HTTP status and the standard {message, error, details?} body.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		detail := appErr.Message
		if appErr.Err != nil {
			detail = appErr.Err.Error()
		}
		var details interface{}
		if appErr.Details != nil {
			details = appErr.Details
		}
		return response.Error(c, appErr.Status, appErr.Message, detail, details)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return response.Error(c, fiberErr.Code, fiberErr.Message, fiberErr.Message, nil)
	}

	return response.Error(c, fiber.StatusInternalServerError, "Internal Server Error", err.Error(), nil)
}

package response

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the standardized error JSON shape: {message, error, details?}.
type ErrorBody struct {
	Message string      `json:"message"`
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// Error sends a response with the standard error format. message is the
// short human-readable summary; detail carries the underlying error text.
func Error(c *fiber.Ctx, statusCode int, message, detail string, details interface{}) error {
	return c.Status(statusCode).JSON(ErrorBody{
		Message: message,
		Error:   detail,
		Details: details,
	})
}

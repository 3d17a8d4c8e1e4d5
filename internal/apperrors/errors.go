package apperrors

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error is the application error carried from services to the HTTP boundary.
// Status is the HTTP status the global error handler maps it to; Message is
// safe to show to clients; Err (optional) is the upstream cause.
type Error struct {
	Status  int
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation: bad or missing client input.
func Validation(message string) *Error {
	return &Error{Status: fiber.StatusBadRequest, Message: message}
}

// NotFound: the addressed record does not exist.
func NotFound(message string) *Error {
	return &Error{Status: fiber.StatusNotFound, Message: message}
}

// PriceUnavailable: no market price could be resolved after the allowed
// attempts. Surfaced as 404, matching the route contract.
func PriceUnavailable(message string, cause error) *Error {
	return &Error{Status: fiber.StatusNotFound, Message: message, Err: cause}
}

// Configuration: a required external credential or setting is missing.
func Configuration(message string) *Error {
	return &Error{Status: fiber.StatusInternalServerError, Message: message}
}

// External: an upstream dependency failed; detail is attached for the
// response body.
func External(message string, cause error) *Error {
	e := &Error{Status: fiber.StatusInternalServerError, Message: message, Err: cause}
	if cause != nil {
		e.Details = map[string]interface{}{"upstream": cause.Error()}
	}
	return e
}

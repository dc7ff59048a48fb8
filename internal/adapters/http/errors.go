package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/tunitrip/internal/core/ports"
	"github.com/samirrijal/tunitrip/internal/core/usecases"
	"github.com/samirrijal/tunitrip/internal/pkg/logging"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errFrom maps service errors onto API errors.
func errFrom(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, usecases.ErrSessionNotFound):
		return errNotFound(c, "session not found")
	case errors.Is(err, ports.ErrNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, usecases.ErrWaypointIndex),
		errors.Is(err, usecases.ErrInvalidFuelType),
		errors.Is(err, usecases.ErrInvalidLocation):
		return errBadRequest(c, err.Error())
	case errors.Is(err, usecases.ErrIncompleteTrip):
		return errConflict(c, err.Error())
	}
	logging.FromContext(c.UserContext()).Error("request failed", "error", err)
	return errInternal(c, "internal error")
}

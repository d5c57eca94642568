package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/halalfinder/internal/core/domain"
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

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnauthorized returns a 401 error.
func errUnauthorized(c *fiber.Ctx, msg string) error {
	return newError(c, 401, "unauthorized", msg)
}

// errForbidden returns a 403 error.
func errForbidden(c *fiber.Ctx, msg string) error {
	return newError(c, 403, "forbidden", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errUnprocessable returns a 422 error for invalid input.
func errUnprocessable(c *fiber.Ctx, msg string) error {
	return newError(c, 422, "unprocessable", msg)
}

// errBadGateway returns a 502 error for upstream backend failures.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, 502, "bad_gateway", msg)
}

// errDomain maps domain errors onto HTTP responses. Backend query failures
// become 502s so clients can tell "our upstream is down" from "we broke";
// validation failures become 422s; location failures map by kind.
func errDomain(c *fiber.Ctx, err error) error {
	if qe, ok := domain.IsQueryError(err); ok {
		LoggerFromCtx(c.UserContext()).Warn("backend query failed",
			"kind", qe.Kind, "status", qe.Status, "error", err)
		switch qe.Kind {
		case domain.QueryNetwork:
			return errBadGateway(c, "backend unreachable")
		case domain.QueryServer:
			return errBadGateway(c, err.Error())
		}
	}
	if _, ok := domain.IsValidationError(err); ok {
		return errUnprocessable(c, err.Error())
	}
	if le, ok := domain.IsLocationError(err); ok {
		switch le.Kind {
		case domain.LocationPermissionDenied:
			return errForbidden(c, err.Error())
		case domain.LocationTimeout:
			return newError(c, 504, "location_timeout", err.Error())
		default:
			return newError(c, 503, "location_unavailable", err.Error())
		}
	}
	return errInternal(c, err.Error())
}

package handlers

import (
	"errors"

	"github.com/brandradar/server/internal/discovery"
	"github.com/brandradar/server/internal/logger"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the error envelope returned on every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler is the central Fiber error handler. It maps the
// discovery error taxonomy onto HTTP: missing credentials are 503
// (service not configured, distinct from unreachable), upstream
// failures keep the upstream status, fiber errors keep their own
// code, and anything else is a store failure and fatal.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if errors.Is(err, discovery.ErrNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "Ad discovery service not configured",
		})
	}

	if se, ok := discovery.AsServiceError(err); ok {
		status := se.Status
		if status < 400 || status > 599 {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(ErrorResponse{
			Error: "Ad discovery service error: " + se.Message,
		})
	}

	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(ErrorResponse{
			Error: e.Message,
		})
	}

	logger.GetLogger("handlers").Errorf("Unhandled request error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Internal Server Error",
	})
}

// Package middleware provides Fiber middleware shared by the dashboard.
package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/models"
)

// ErrorHandler returns the app-level error handler: every unhandled error
// becomes a structured JSON body and a log line.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		logger.Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "ERROR",
				Message: message,
				Path:    c.Path(),
			},
		})
	}
}

// Package router wires the dashboard's routes and global middleware.
package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/templecast/templecast/internal/handlers"
	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/session"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, sess *session.Session, version string) *handlers.Handler {
	h := handlers.New(logger, sess, version)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	// Dashboard page
	app.Get("/", h.Page)

	// Health check
	app.Get("/health", h.Health)

	// Zone API
	api := app.Group("/api")
	api.Get("/zones", h.Zones)
	api.Post("/refresh", h.Refresh)
	api.Post("/autorefresh", h.AutoRefresh)

	// 404 for everything else
	app.Use(h.NotFound)

	return h
}

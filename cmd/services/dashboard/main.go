package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/templecast/templecast/internal/config"
	"github.com/templecast/templecast/internal/logging"
	"github.com/templecast/templecast/internal/middleware"
	"github.com/templecast/templecast/internal/router"
	"github.com/templecast/templecast/internal/session"
	"github.com/templecast/templecast/internal/simulation"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Dashboard service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	// Zone simulator and session state
	simulator := simulation.New(logger)
	sess := session.New(logger, simulator, cfg.Dashboard)
	logger.Info("Zone session initialized",
		"zones", len(simulator.Zones()),
		"refresh_interval_seconds", cfg.Dashboard.RefreshInterval,
		"max_failures", cfg.Dashboard.MaxFailures)

	// Initialize HTTP app and routes
	app := fiber.New(fiber.Config{
		AppName:      "templecast-dashboard",
		ErrorHandler: middleware.ErrorHandler(logger),
	})
	router.Setup(app, logger, sess, Version)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Dashboard.Host, cfg.Dashboard.HTTPPort)
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

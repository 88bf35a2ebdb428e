package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/app"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/config"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/logger"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load(nil)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logger.
	log := logger.New(cfg.AppName, cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting intern service",
		slog.String("environment", cfg.Environment),
		slog.String("version", cfg.AppVersion),
		slog.Int("http_port", cfg.HTTPPort),
		slog.Int("admin_emails", len(cfg.AdminEmails)),
	)

	// Create the application with all dependencies wired.
	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create a context that is cancelled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Run the application. This blocks until shutdown.
	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("intern service stopped")
}

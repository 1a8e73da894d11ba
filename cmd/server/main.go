// Package main implements the entry point for the taskherald server: the
// HTTP API for managing deferred tasks plus the background scheduler that
// delivers their reminders and closes them at the due instant.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taskherald/taskherald/internal/config"
	"github.com/taskherald/taskherald/internal/platform/logger"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending database migrations before starting")
	flag.Parse()

	if err := run(*migrate); err != nil {
		log.Fatalf("taskherald: %v", err)
	}
}

// run wires the application together and blocks until shutdown.
func run(migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"poll_interval", cfg.Scheduler.PollInterval,
		"grace_hours", cfg.Scheduler.GraceHours)

	db, err := setupDatabase(cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}()

	if migrate {
		if err := runMigrations(db, appLogger); err != nil {
			return err
		}
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

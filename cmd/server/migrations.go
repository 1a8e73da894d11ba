package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/taskherald/taskherald/internal/platform/postgres"
)

// runMigrations applies any pending schema migrations from the embedded
// migration set.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	goose.SetBaseFS(postgres.Migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&gooseLogger{logger: logger})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logger.Info("database migrations applied")
	return nil
}

// gooseLogger adapts goose's printf-style logging to slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

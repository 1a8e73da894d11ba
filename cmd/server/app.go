package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskherald/taskherald/internal/config"
	"github.com/taskherald/taskherald/internal/notifier"
	"github.com/taskherald/taskherald/internal/platform/postgres"
	"github.com/taskherald/taskherald/internal/scheduler"
	"github.com/taskherald/taskherald/internal/service"
	"github.com/taskherald/taskherald/internal/store"
)

// application holds the wired dependencies of the running server.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	db          *sql.DB
	taskStore   store.TaskStore
	taskService service.TaskService
	scheduler   *scheduler.Scheduler
}

// newApplication builds the dependency graph: store, service, notifier and
// scheduler. The notification transport defaults to the log notifier; an
// embedding deployment swaps it for a real chat transport.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	taskStore := postgres.NewPostgresTaskStore(db)

	taskService, err := service.NewTaskService(taskStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	var gateway notifier.Notifier = newLogNotifier(logger)

	sched := scheduler.New(db, taskStore, gateway, scheduler.Config{
		PollInterval: cfg.Scheduler.PollInterval,
		GraceHours:   cfg.Scheduler.GraceHours,
		MaxPerTick:   cfg.Scheduler.MaxPerTick,
		SendTimeout:  cfg.Scheduler.SendTimeout,
	}, logger)

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		taskStore:   taskStore,
		taskService: taskService,
		scheduler:   sched,
	}, nil
}

// Run starts the scheduler and the HTTP server and blocks until ctx is
// canceled or the server fails. The scheduler is stopped before Run returns
// so no tick is left in flight.
func (app *application) Run(ctx context.Context) error {
	app.scheduler.Start()
	defer app.scheduler.Stop()

	return app.startHTTPServer(ctx, app.setupRouter())
}

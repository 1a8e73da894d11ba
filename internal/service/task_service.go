package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/platform/logger"
	"github.com/taskherald/taskherald/internal/store"
)

// TaskServiceError is a custom error type for task service errors.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
func NewTaskServiceError(operation, message string, err error) *TaskServiceError {
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// TaskService provides task-related operations for user-facing callers.
// The scheduler bypasses this layer and talks to the store directly.
type TaskService interface {
	// CreateTask validates the parameters and persists a new PENDING task.
	// Validation failures surface as domain validation errors.
	CreateTask(ctx context.Context, params domain.NewTaskParams) (*domain.Task, error)

	// GetTask retrieves a single task by scope and id.
	GetTask(ctx context.Context, scopeID, id int64) (*domain.Task, error)

	// ListTasks retrieves a scope's tasks ordered by due instant, optionally
	// filtered to one status. CANCELED tasks are never listed.
	ListTasks(ctx context.Context, scopeID int64, status *domain.TaskStatus) ([]*domain.Task, error)

	// MarkDone records the user-driven DONE transition and returns the
	// updated task. Returns ErrAlreadyFinished if the task already reached
	// a terminal status, store.ErrTaskNotFound if it does not exist.
	MarkDone(ctx context.Context, scopeID, id int64) (*domain.Task, error)

	// CancelTask records the user-driven CANCELED transition and returns the
	// updated task, with the same error contract as MarkDone.
	CancelTask(ctx context.Context, scopeID, id int64) (*domain.Task, error)
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	tasks  store.TaskStore
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks store.TaskStore, log *slog.Logger) (TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("%w: task store cannot be nil", domain.ErrValidation)
	}
	if log == nil {
		log = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  tasks,
		logger: log.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	params domain.NewTaskParams,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(params)
	if err != nil {
		log.Debug("task creation rejected",
			slog.Int64("scope_id", params.ScopeID),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to persist task",
			slog.Int64("scope_id", params.ScopeID),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("scope_id", task.ScopeID),
		slog.Time("due_at", task.DueAt))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, scopeID, id int64) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, scopeID, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewTaskServiceError("get_task", "failed to load task", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	scopeID int64,
	status *domain.TaskStatus,
) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByScope(ctx, scopeID, status)
	if err != nil {
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// MarkDone implements TaskService.MarkDone
func (s *taskServiceImpl) MarkDone(ctx context.Context, scopeID, id int64) (*domain.Task, error) {
	return s.finish(ctx, "mark_done", scopeID, id, s.tasks.MarkDone)
}

// CancelTask implements TaskService.CancelTask
func (s *taskServiceImpl) CancelTask(ctx context.Context, scopeID, id int64) (*domain.Task, error) {
	return s.finish(ctx, "cancel_task", scopeID, id, s.tasks.Cancel)
}

// finish applies a user-driven terminal transition. The store write only
// succeeds from PENDING; a not-applied result is disambiguated with a read:
// missing task vs. already-terminal task.
func (s *taskServiceImpl) finish(
	ctx context.Context,
	operation string,
	scopeID, id int64,
	transition func(ctx context.Context, scopeID, id int64) (bool, error),
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	applied, err := transition(ctx, scopeID, id)
	if err != nil {
		return nil, NewTaskServiceError(operation, "transition failed", err)
	}
	if !applied {
		if _, err := s.tasks.GetByID(ctx, scopeID, id); err != nil {
			if store.IsNotFoundError(err) {
				return nil, err
			}
			return nil, NewTaskServiceError(operation, "failed to load task", err)
		}
		return nil, ErrAlreadyFinished
	}

	task, err := s.tasks.GetByID(ctx, scopeID, id)
	if err != nil {
		return nil, NewTaskServiceError(operation, "failed to reload task", err)
	}

	log.Info("task finished",
		slog.Int64("task_id", id),
		slog.Int64("scope_id", scopeID),
		slog.String("operation", operation))
	return task, nil
}

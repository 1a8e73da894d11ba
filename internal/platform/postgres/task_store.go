package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/platform/logger"
	"github.com/taskherald/taskherald/internal/store"
)

// taskColumns is the shared select list for task queries. The pre-notified
// set lives in the task_pre_notifications child table and is folded back
// into its stable descending comma-separated form on read.
const taskColumns = `
	t.id, t.scope_id, t.channel_id, t.title, t.url, t.closing_message,
	t.remind_at, t.due_at, t.notify_role_id, t.pre_due_hours,
	t.notified_at, t.closed_at,
	COALESCE((
		SELECT string_agg(p.hour::text, ',' ORDER BY p.hour DESC)
		FROM task_pre_notifications p
		WHERE p.task_id = t.id
	), '') AS pre_notified_hours,
	t.status, t.creator_id, t.created_at, t.updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db store.DBTX
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller.
func NewPostgresTaskStore(db store.DBTX) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &PostgresTaskStore{db: db}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{db: tx}
}

// Create implements store.TaskStore.Create
// It persists a new task row and populates the generated id.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO tasks (
			scope_id, channel_id, title, url, closing_message,
			remind_at, due_at, notify_role_id, pre_due_hours,
			status, creator_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		task.ScopeID,
		task.ChannelID,
		task.Title,
		task.URL,
		task.ClosingMessage,
		task.RemindAt,
		task.DueAt,
		nullableID(task.NotifyRoleID),
		task.PreDueHours.String(),
		task.Status,
		task.CreatorID,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		log.Error("failed to create task",
			"scope_id", task.ScopeID,
			"error", err)
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, scopeID, id int64) (*domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s FROM tasks t WHERE t.scope_id = $1 AND t.id = $2`, taskColumns)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, scopeID, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		return nil, store.NewStoreError("task", "get_by_id", "failed to query task", MapError(err))
	}

	return task, nil
}

// ListByScope implements store.TaskStore.ListByScope
// CANCELED tasks are excluded from every listing, filtered or not.
func (s *PostgresTaskStore) ListByScope(
	ctx context.Context,
	scopeID int64,
	status *domain.TaskStatus,
) ([]*domain.Task, error) {
	var query string
	var args []any

	if status != nil {
		query = fmt.Sprintf(`
			SELECT %s FROM tasks t
			WHERE t.scope_id = $1 AND t.status = $2 AND t.status <> 'CANCELED'
			ORDER BY t.due_at ASC, t.id ASC`, taskColumns)
		args = []any{scopeID, *status}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM tasks t
			WHERE t.scope_id = $1 AND t.status <> 'CANCELED'
			ORDER BY t.due_at ASC, t.id ASC`, taskColumns)
		args = []any{scopeID}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStoreError("task", "list_by_scope", "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// ClaimDue implements store.TaskStore.ClaimDue
// Each query locks the selected rows with FOR UPDATE SKIP LOCKED: rows
// already claimed by another in-flight transaction are invisible here
// instead of blocking, and a rollback releases the claim automatically.
func (s *PostgresTaskStore) ClaimDue(
	ctx context.Context,
	kind store.CandidateKind,
	now time.Time,
	graceStart time.Time,
	limit int,
) ([]*domain.Task, error) {
	log := logger.FromContext(ctx)

	var query string
	var args []any

	switch kind {
	case store.CandidateDueClosing:
		query = fmt.Sprintf(`
			SELECT %s FROM tasks t
			WHERE t.status = 'PENDING'
			  AND t.closed_at IS NULL
			  AND t.due_at >= $1
			  AND t.due_at <= $2
			ORDER BY t.due_at ASC, t.id ASC
			LIMIT $3
			FOR UPDATE OF t SKIP LOCKED`, taskColumns)
		args = []any{graceStart, now, limit}

	case store.CandidateInitialReminder:
		query = fmt.Sprintf(`
			SELECT %s FROM tasks t
			WHERE t.status = 'PENDING'
			  AND t.notified_at IS NULL
			  AND t.remind_at >= $1
			  AND t.remind_at <= $2
			ORDER BY t.remind_at ASC, t.id ASC
			LIMIT $3
			FOR UPDATE OF t SKIP LOCKED`, taskColumns)
		args = []any{graceStart, now, limit}

	case store.CandidatePreDue:
		// Only rows owing a pre-due warning right now: some configured
		// hour has triggered and is absent from the pre-notified set.
		// The scan window ends at now + the largest allowed offset.
		query = fmt.Sprintf(`
			SELECT %s FROM tasks t
			WHERE t.status = 'PENDING'
			  AND t.closed_at IS NULL
			  AND t.due_at > $1
			  AND t.due_at <= $2
			  AND t.due_at >= $3
			  AND t.pre_due_hours <> ''
			  AND EXISTS (
				SELECT 1
				FROM unnest(string_to_array(t.pre_due_hours, ',')::int[]) AS h(hour)
				WHERE t.due_at - make_interval(hours => h.hour) <= $1
				  AND NOT EXISTS (
					SELECT 1 FROM task_pre_notifications p
					WHERE p.task_id = t.id AND p.hour = h.hour
				  )
			  )
			ORDER BY t.due_at ASC, t.id ASC
			LIMIT $4
			FOR UPDATE OF t SKIP LOCKED`, taskColumns)
		scanWindowEnd := now.Add(time.Duration(domain.MaxPreDueHour) * time.Hour)
		args = []any{now, scanWindowEnd, graceStart, limit}

	default:
		return nil, store.NewStoreError(
			"task",
			"claim_due",
			fmt.Sprintf("unknown candidate kind %q", kind),
			nil,
		)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to claim due tasks",
			"kind", string(kind),
			"error", err)
		return nil, store.NewStoreError("task", "claim_due", "failed to query candidates", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	return collectTasks(rows)
}

// MarkNotified implements store.TaskStore.MarkNotified
func (s *PostgresTaskStore) MarkNotified(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `
		UPDATE tasks
		SET notified_at = $2, updated_at = $3
		WHERE id = $1 AND status = 'PENDING' AND notified_at IS NULL
	`
	return s.execConditional(ctx, "mark_notified", query, id, at, time.Now().UTC())
}

// MarkPreNotified implements store.TaskStore.MarkPreNotified
// The pre-notified set is a child table keyed (task_id, hour); inserting
// with ON CONFLICT DO NOTHING is the set union, so re-marking the same hour
// affects zero rows instead of failing.
func (s *PostgresTaskStore) MarkPreNotified(
	ctx context.Context,
	id int64,
	hour int,
	at time.Time,
) (bool, error) {
	query := `
		INSERT INTO task_pre_notifications (task_id, hour, notified_at)
		SELECT t.id, $2, $3
		FROM tasks t
		WHERE t.id = $1 AND t.status = 'PENDING'
		ON CONFLICT (task_id, hour) DO NOTHING
	`
	return s.execConditional(ctx, "mark_pre_notified", query, id, hour, at)
}

// MarkClosed implements store.TaskStore.MarkClosed
func (s *PostgresTaskStore) MarkClosed(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `
		UPDATE tasks
		SET status = 'CLOSED', closed_at = $2, updated_at = $3
		WHERE id = $1 AND status = 'PENDING' AND closed_at IS NULL
	`
	return s.execConditional(ctx, "mark_closed", query, id, at, time.Now().UTC())
}

// CancelForNonRetryable implements store.TaskStore.CancelForNonRetryable
func (s *PostgresTaskStore) CancelForNonRetryable(
	ctx context.Context,
	id int64,
	at time.Time,
) (bool, error) {
	query := `
		UPDATE tasks
		SET status = 'CANCELED', updated_at = $2
		WHERE id = $1 AND status = 'PENDING'
	`
	return s.execConditional(ctx, "cancel_for_non_retryable", query, id, at)
}

// MarkDone implements store.TaskStore.MarkDone
func (s *PostgresTaskStore) MarkDone(ctx context.Context, scopeID, id int64) (bool, error) {
	query := `
		UPDATE tasks
		SET status = 'DONE', updated_at = $3
		WHERE id = $1 AND scope_id = $2 AND status = 'PENDING'
	`
	return s.execConditional(ctx, "mark_done", query, id, scopeID, time.Now().UTC())
}

// Cancel implements store.TaskStore.Cancel
func (s *PostgresTaskStore) Cancel(ctx context.Context, scopeID, id int64) (bool, error) {
	query := `
		UPDATE tasks
		SET status = 'CANCELED', updated_at = $3
		WHERE id = $1 AND scope_id = $2 AND status = 'PENDING'
	`
	return s.execConditional(ctx, "cancel", query, id, scopeID, time.Now().UTC())
}

// execConditional runs a guarded write and reports whether it changed a row.
// Zero affected rows is the race-loser/no-op case, not an error.
func (s *PostgresTaskStore) execConditional(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) (bool, error) {
	log := logger.FromContext(ctx)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("conditional task write failed",
			"operation", operation,
			"error", err)
		return false, store.NewStoreError("task", operation, "write failed", MapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("task", operation, "failed to get rows affected", MapError(err))
	}

	return affected > 0, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanTask.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask maps one result row onto a domain.Task.
func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task           domain.Task
		notifyRoleID   sql.NullInt64
		preDueRaw      string
		notifiedAt     sql.NullTime
		closedAt       sql.NullTime
		preNotifiedRaw string
		status         string
	)

	err := row.Scan(
		&task.ID,
		&task.ScopeID,
		&task.ChannelID,
		&task.Title,
		&task.URL,
		&task.ClosingMessage,
		&task.RemindAt,
		&task.DueAt,
		&notifyRoleID,
		&preDueRaw,
		&notifiedAt,
		&closedAt,
		&preNotifiedRaw,
		&status,
		&task.CreatorID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notifyRoleID.Valid {
		roleID := notifyRoleID.Int64
		task.NotifyRoleID = &roleID
	}
	if notifiedAt.Valid {
		at := notifiedAt.Time.UTC()
		task.NotifiedAt = &at
	}
	if closedAt.Valid {
		at := closedAt.Time.UTC()
		task.ClosedAt = &at
	}

	task.PreDueHours, err = domain.ParseHourSet(preDueRaw)
	if err != nil {
		return nil, fmt.Errorf("stored pre_due_hours %q is corrupt: %w", preDueRaw, err)
	}
	task.PreNotifiedHours, err = domain.ParseHourSet(preNotifiedRaw)
	if err != nil {
		return nil, fmt.Errorf("stored pre-notified set %q is corrupt: %w", preNotifiedRaw, err)
	}

	task.Status, err = domain.ParseTaskStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored status %q is corrupt: %w", status, err)
	}

	task.RemindAt = task.RemindAt.UTC()
	task.DueAt = task.DueAt.UTC()
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return &task, nil
}

// collectTasks drains a result set into tasks.
func collectTasks(rows *sql.Rows) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", "scan", "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "scan", "error iterating task rows", MapError(err))
	}
	return tasks, nil
}

// nullableID converts an optional id into its SQL representation.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskherald/taskherald/internal/domain"
)

// CandidateKind selects which family of due candidates a ClaimDue call leases.
type CandidateKind string

// Claimable candidate kinds, in scheduler priority order.
const (
	// CandidateDueClosing selects PENDING tasks whose due instant has passed
	// and whose closing action has not run yet.
	CandidateDueClosing CandidateKind = "due_closing"

	// CandidateInitialReminder selects PENDING tasks whose reminder instant
	// has passed and whose initial reminder has not been sent yet.
	CandidateInitialReminder CandidateKind = "initial_reminder"

	// CandidatePreDue selects PENDING tasks not yet due that owe at least
	// one configured pre-due warning whose trigger instant has arrived.
	CandidatePreDue CandidateKind = "pre_due"
)

// TaskStore defines the interface for task persistence: creation, queries,
// the concurrency-safe claim primitive, and the conditional mutation API.
//
// All mutations are conditional writes guarded by current status/field-null
// checks. They report whether the write was applied so callers can detect
// "someone else already did this" races without treating them as errors.
// Version: 1.0
type TaskStore interface {
	// Create persists a new task and populates its ID and audit timestamps.
	// The task must already be valid per domain validation rules.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by scope and id.
	// Returns ErrTaskNotFound if no such task exists in the scope.
	GetByID(ctx context.Context, scopeID, id int64) (*domain.Task, error)

	// ListByScope retrieves the tasks of a scope ordered by due instant.
	// A nil status lists every status except CANCELED; a non-nil status
	// filters to exactly that status. CANCELED tasks are never listed.
	ListByScope(ctx context.Context, scopeID int64, status *domain.TaskStatus) ([]*domain.Task, error)

	// ClaimDue leases up to limit due-and-unprocessed candidate rows of the
	// given kind, ordered earliest-due-first. Candidates whose trigger
	// instant is older than graceStart are excluded.
	//
	// Each returned row is locked exclusively for the duration of the
	// enclosing transaction, and rows already claimed by another in-flight
	// transaction are skipped rather than waited on. ClaimDue MUST therefore
	// be called on a TaskStore bound to a transaction via WithTx; calling it
	// outside a transaction provides no exclusivity.
	ClaimDue(
		ctx context.Context,
		kind CandidateKind,
		now time.Time,
		graceStart time.Time,
		limit int,
	) ([]*domain.Task, error)

	// MarkNotified sets notified_at to at, only if the task is PENDING and
	// notified_at is currently null. A second call is a no-op reporting
	// applied=false, not an error.
	MarkNotified(ctx context.Context, id int64, at time.Time) (bool, error)

	// MarkPreNotified adds hour to the task's pre-notified set, only while
	// the task is PENDING. Idempotent by construction (set union); adding a
	// present hour reports applied=false.
	MarkPreNotified(ctx context.Context, id int64, hour int, at time.Time) (bool, error)

	// MarkClosed sets status=CLOSED and closed_at=at, only from PENDING.
	// Invocation on an already terminal task reports applied=false with a
	// nil error (already satisfied for CLOSED, rejected otherwise).
	MarkClosed(ctx context.Context, id int64, at time.Time) (bool, error)

	// CancelForNonRetryable sets status=CANCELED, only from PENDING. Used
	// when a notification failed permanently so the task stops being
	// re-attempted.
	CancelForNonRetryable(ctx context.Context, id int64, at time.Time) (bool, error)

	// MarkDone records the user-driven DONE transition, only from PENDING.
	MarkDone(ctx context.Context, scopeID, id int64) (bool, error)

	// Cancel records the user-driven CANCELED transition, only from PENDING.
	Cancel(ctx context.Context, scopeID, id int64) (bool, error)

	// WithTx returns a new TaskStore instance bound to the provided
	// transaction. The transaction is created and managed by the caller,
	// typically through RunInTransaction.
	WithTx(tx *sql.Tx) TaskStore
}

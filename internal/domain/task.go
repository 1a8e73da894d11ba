package domain

import (
	"net/url"
	"strings"
	"time"
)

// Field length limits for task content.
const (
	TitleMaxLen          = 200
	ClosingMessageMaxLen = 500
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Possible task status values.
//
// CLOSED means the task passed its due instant and the closing action ran to
// completion. DONE and CANCELED are terminal states reached through explicit
// user action (or, for CANCELED, a permanently undeliverable notification),
// independent of the timer machinery.
const (
	TaskStatusPending  TaskStatus = "PENDING"
	TaskStatusDone     TaskStatus = "DONE"
	TaskStatusCanceled TaskStatus = "CANCELED"
	TaskStatusClosed   TaskStatus = "CLOSED"
)

// ParseTaskStatus converts a status string into a TaskStatus.
// Returns ErrInvalidStatus for unknown values.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	switch TaskStatus(strings.ToUpper(raw)) {
	case TaskStatusPending:
		return TaskStatusPending, nil
	case TaskStatusDone:
		return TaskStatusDone, nil
	case TaskStatusCanceled:
		return TaskStatusCanceled, nil
	case TaskStatusClosed:
		return TaskStatusClosed, nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsTerminal reports whether the status permits no further transitions.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone || s == TaskStatusCanceled || s == TaskStatusClosed
}

// Task is a persisted obligation with a primary reminder instant and a due
// instant. Tasks are created PENDING and mutated only by the scheduler
// (timer-driven progress fields) and by explicit user actions (DONE/CANCELED).
// They are never physically deleted; terminal states are retained for audit.
type Task struct {
	ID        int64 `json:"id"`
	ScopeID   int64 `json:"scope_id"`
	ChannelID int64 `json:"channel_id"`

	Title          string `json:"title"`
	URL            string `json:"url"`
	ClosingMessage string `json:"closing_message,omitempty"`

	// RemindAt and DueAt are UTC instants with DueAt >= RemindAt.
	RemindAt time.Time `json:"remind_at"`
	DueAt    time.Time `json:"due_at"`

	NotifyRoleID *int64  `json:"notify_role_id,omitempty"`
	PreDueHours  HourSet `json:"pre_due_hours"`

	// Progress tracking. NotifiedAt and ClosedAt are written at most once;
	// PreNotifiedHours only grows and stays a subset of PreDueHours.
	NotifiedAt       *time.Time `json:"notified_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	PreNotifiedHours HourSet    `json:"pre_notified_hours"`

	Status TaskStatus `json:"status"`

	CreatorID int64     `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTaskParams carries the caller-supplied fields for task creation.
type NewTaskParams struct {
	ScopeID   int64
	ChannelID int64
	Title     string
	URL       string
	RemindAt  time.Time
	DueAt     time.Time
	CreatorID int64

	// NotifyRoleID is the optional role to mention in notifications.
	NotifyRoleID *int64

	// PreDueHoursRaw is the raw comma-separated offset list, e.g. "24,3,1".
	// Empty means DefaultPreDueHours.
	PreDueHoursRaw string

	ClosingMessage string
}

// NewTask validates the given parameters and returns a new PENDING task.
// Timestamps are normalized to UTC. Returns one of the domain validation
// errors if any field is invalid.
func NewTask(p NewTaskParams) (*Task, error) {
	return newTaskAt(p, time.Now().UTC())
}

// newTaskAt is NewTask with an injected clock for tests.
func newTaskAt(p NewTaskParams, now time.Time) (*Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" || len([]rune(title)) > TitleMaxLen {
		return nil, ErrInvalidTitle
	}

	if err := validateTaskURL(p.URL); err != nil {
		return nil, err
	}

	if len([]rune(p.ClosingMessage)) > ClosingMessageMaxLen {
		return nil, ErrInvalidClosingMessage
	}

	remindAt := p.RemindAt.UTC()
	dueAt := p.DueAt.UTC()
	if !remindAt.After(now) {
		return nil, ErrRemindAtMustBeFuture
	}
	if !dueAt.After(now) {
		return nil, ErrDueAtMustBeFuture
	}
	if dueAt.Before(remindAt) {
		return nil, ErrDueAtBeforeRemindAt
	}

	hours := DefaultPreDueHours()
	if strings.TrimSpace(p.PreDueHoursRaw) != "" {
		parsed, err := ParseHourSet(p.PreDueHoursRaw)
		if err != nil {
			return nil, err
		}
		hours = parsed
	}

	return &Task{
		ScopeID:          p.ScopeID,
		ChannelID:        p.ChannelID,
		Title:            title,
		URL:              p.URL,
		ClosingMessage:   p.ClosingMessage,
		RemindAt:         remindAt,
		DueAt:            dueAt,
		NotifyRoleID:     p.NotifyRoleID,
		PreDueHours:      hours,
		PreNotifiedHours: HourSet{},
		Status:           TaskStatusPending,
		CreatorID:        p.CreatorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// validateTaskURL checks that raw is an absolute http(s) URL with a host.
func validateTaskURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if u.Host == "" {
		return ErrInvalidURL
	}
	return nil
}

// FormatRemindAt renders the reminder instant in the given location for
// human-readable output. A nil location renders UTC.
func (t *Task) FormatRemindAt(loc *time.Location) string {
	return formatInstant(t.RemindAt, loc)
}

// FormatDueAt renders the due instant in the given location for
// human-readable output. A nil location renders UTC.
func (t *Task) FormatDueAt(loc *time.Location) string {
	return formatInstant(t.DueAt, loc)
}

func formatInstant(at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return at.In(loc).Format("2006-01-02 15:04")
}

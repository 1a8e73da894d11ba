package api

import (
	"time"

	"github.com/taskherald/taskherald/internal/domain"
)

// ScopeHeader carries the caller's scope ID on every task endpoint.
const ScopeHeader = "X-Herald-Scope"

// CreateTaskRequest defines the payload for the task creation endpoint.
// Structural checks live in the validate tags; semantic rules (future
// instants, ordering, hour ranges) are enforced by the domain layer.
type CreateTaskRequest struct {
	ChannelID      int64     `json:"channel_id"                validate:"required"`
	Title          string    `json:"title"                     validate:"required"`
	URL            string    `json:"url"                       validate:"required,url"`
	RemindAt       time.Time `json:"remind_at"                 validate:"required"`
	DueAt          time.Time `json:"due_at"                    validate:"required"`
	CreatorID      int64     `json:"creator_id"                validate:"required"`
	NotifyRoleID   *int64    `json:"notify_role_id,omitempty"`
	PreDueHours    string    `json:"pre_due_hours,omitempty"`
	ClosingMessage string    `json:"closing_message,omitempty"`
}

// TaskResponse represents the response data for a task.
type TaskResponse struct {
	ID               int64      `json:"id"`
	ScopeID          int64      `json:"scope_id"`
	ChannelID        int64      `json:"channel_id"`
	Title            string     `json:"title"`
	URL              string     `json:"url"`
	ClosingMessage   string     `json:"closing_message,omitempty"`
	RemindAt         time.Time  `json:"remind_at"`
	DueAt            time.Time  `json:"due_at"`
	NotifyRoleID     *int64     `json:"notify_role_id,omitempty"`
	PreDueHours      string     `json:"pre_due_hours"`
	PreNotifiedHours string     `json:"pre_notified_hours"`
	NotifiedAt       *time.Time `json:"notified_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	Status           string     `json:"status"`
	CreatorID        int64      `json:"creator_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TaskListResponse wraps a task listing.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
}

// taskToResponse converts a domain.Task to a TaskResponse.
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:               task.ID,
		ScopeID:          task.ScopeID,
		ChannelID:        task.ChannelID,
		Title:            task.Title,
		URL:              task.URL,
		ClosingMessage:   task.ClosingMessage,
		RemindAt:         task.RemindAt,
		DueAt:            task.DueAt,
		NotifyRoleID:     task.NotifyRoleID,
		PreDueHours:      task.PreDueHours.String(),
		PreNotifiedHours: task.PreNotifiedHours.String(),
		NotifiedAt:       task.NotifiedAt,
		ClosedAt:         task.ClosedAt,
		Status:           string(task.Status),
		CreatorID:        task.CreatorID,
		CreatedAt:        task.CreatedAt,
		UpdatedAt:        task.UpdatedAt,
	}
}

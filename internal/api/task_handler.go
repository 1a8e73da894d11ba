package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskherald/taskherald/internal/api/shared"
	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/service"
)

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// Routes mounts the task endpoints on a fresh router.
func (h *TaskHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateTask)
	r.Get("/", h.ListTasks)
	r.Get("/{id}", h.GetTask)
	r.Post("/{id}/done", h.MarkDone)
	r.Post("/{id}/cancel", h.CancelTask)
	return r
}

// CreateTask handles POST /api/v1/tasks requests.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.scopeID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), domain.NewTaskParams{
		ScopeID:        scopeID,
		ChannelID:      req.ChannelID,
		Title:          req.Title,
		URL:            req.URL,
		RemindAt:       req.RemindAt,
		DueAt:          req.DueAt,
		CreatorID:      req.CreatorID,
		NotifyRoleID:   req.NotifyRoleID,
		PreDueHoursRaw: req.PreDueHours,
		ClosingMessage: req.ClosingMessage,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

// ListTasks handles GET /api/v1/tasks requests. An optional status query
// parameter filters the listing; CANCELED is never listed.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.scopeID(w, r)
	if !ok {
		return
	}

	var status *domain.TaskStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := domain.ParseTaskStatus(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &parsed
	}

	tasks, err := h.taskService.ListTasks(r.Context(), scopeID, status)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	resp := TaskListResponse{Tasks: make([]TaskResponse, 0, len(tasks))}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, taskToResponse(task))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetTask handles GET /api/v1/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	scopeID, ok := h.scopeID(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), scopeID, id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// MarkDone handles POST /api/v1/tasks/{id}/done requests.
func (h *TaskHandler) MarkDone(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.taskService.MarkDone)
}

// CancelTask handles POST /api/v1/tasks/{id}/cancel requests.
func (h *TaskHandler) CancelTask(w http.ResponseWriter, r *http.Request) {
	h.finish(w, r, h.taskService.CancelTask)
}

// finish runs one of the user-driven terminal transitions.
func (h *TaskHandler) finish(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, scopeID, id int64) (*domain.Task, error),
) {
	scopeID, ok := h.scopeID(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	task, err := transition(r.Context(), scopeID, id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// scopeID extracts the caller's scope from the X-Herald-Scope header,
// responding with 400 if it is missing or malformed.
func (h *TaskHandler) scopeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get(ScopeHeader)
	if raw == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Missing "+ScopeHeader+" header")
		return 0, false
	}
	scopeID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || scopeID <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+ScopeHeader+" header")
		return 0, false
	}
	return scopeID, true
}

// taskID extracts the task id path parameter, responding with 400 when it is
// not a positive integer.
func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task id")
		return 0, false
	}
	return id, true
}

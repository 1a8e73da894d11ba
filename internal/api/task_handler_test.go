package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/service"
	"github.com/taskherald/taskherald/internal/store"
)

// stubTaskService implements service.TaskService with overridable functions.
type stubTaskService struct {
	createFn func(ctx context.Context, params domain.NewTaskParams) (*domain.Task, error)
	getFn    func(ctx context.Context, scopeID, id int64) (*domain.Task, error)
	listFn   func(ctx context.Context, scopeID int64, status *domain.TaskStatus) ([]*domain.Task, error)
	doneFn   func(ctx context.Context, scopeID, id int64) (*domain.Task, error)
	cancelFn func(ctx context.Context, scopeID, id int64) (*domain.Task, error)
}

var _ service.TaskService = (*stubTaskService)(nil)

func (s *stubTaskService) CreateTask(
	ctx context.Context,
	params domain.NewTaskParams,
) (*domain.Task, error) {
	return s.createFn(ctx, params)
}

func (s *stubTaskService) GetTask(ctx context.Context, scopeID, id int64) (*domain.Task, error) {
	return s.getFn(ctx, scopeID, id)
}

func (s *stubTaskService) ListTasks(
	ctx context.Context,
	scopeID int64,
	status *domain.TaskStatus,
) ([]*domain.Task, error) {
	return s.listFn(ctx, scopeID, status)
}

func (s *stubTaskService) MarkDone(ctx context.Context, scopeID, id int64) (*domain.Task, error) {
	return s.doneFn(ctx, scopeID, id)
}

func (s *stubTaskService) CancelTask(ctx context.Context, scopeID, id int64) (*domain.Task, error) {
	return s.cancelFn(ctx, scopeID, id)
}

func sampleTask() *domain.Task {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Task{
		ID:               7,
		ScopeID:          1000,
		ChannelID:        2000,
		Title:            "Submit the report",
		URL:              "https://example.com/report",
		RemindAt:         now.Add(time.Hour),
		DueAt:            now.Add(24 * time.Hour),
		PreDueHours:      domain.HourSet{24, 3, 1},
		PreNotifiedHours: domain.HourSet{},
		Status:           domain.TaskStatusPending,
		CreatorID:        3000,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func doRequest(
	t *testing.T,
	h *TaskHandler,
	method, path, scope string,
	body interface{},
) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if scope != "" {
		req.Header.Set(ScopeHeader, scope)
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"channel_id": 2000,
		"title":      "Submit the report",
		"url":        "https://example.com/report",
		"remind_at":  time.Now().Add(time.Hour).Format(time.RFC3339),
		"due_at":     time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"creator_id": 3000,
	}
}

func TestCreateTaskSuccess(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		createFn: func(_ context.Context, params domain.NewTaskParams) (*domain.Task, error) {
			assert.Equal(t, int64(1000), params.ScopeID)
			assert.Equal(t, "Submit the report", params.Title)
			return sampleTask(), nil
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodPost, "/", "1000", createBody())

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp TaskResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "24,3,1", resp.PreDueHours)
	assert.Equal(t, "PENDING", resp.Status)
}

func TestCreateTaskRequiresScopeHeader(t *testing.T) {
	t.Parallel()

	h := NewTaskHandler(&stubTaskService{})
	rec := doRequest(t, h, http.MethodPost, "/", "", createBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/", "not-a-number", createBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTaskRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	h := NewTaskHandler(&stubTaskService{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	req.Header.Set(ScopeHeader, "1000")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing required fields fail structural validation.
	rec = doRequest(t, h, http.MethodPost, "/", "1000", map[string]interface{}{"title": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTaskMapsDomainValidation(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		createFn: func(_ context.Context, _ domain.NewTaskParams) (*domain.Task, error) {
			return nil, domain.ErrRemindAtMustBeFuture
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodPost, "/", "1000", createBody())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "remind_at must be in the future", resp["error"])
}

func TestGetTaskNotFound(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		getFn: func(_ context.Context, _, _ int64) (*domain.Task, error) {
			return nil, store.ErrTaskNotFound
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodGet, "/7", "1000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTaskRejectsBadID(t *testing.T) {
	t.Parallel()

	h := NewTaskHandler(&stubTaskService{})
	rec := doRequest(t, h, http.MethodGet, "/zero", "1000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/-3", "1000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksWithStatusFilter(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		listFn: func(_ context.Context, scopeID int64, status *domain.TaskStatus) ([]*domain.Task, error) {
			assert.Equal(t, int64(1000), scopeID)
			require.NotNil(t, status)
			assert.Equal(t, domain.TaskStatusDone, *status)
			return []*domain.Task{sampleTask()}, nil
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodGet, "/?status=done", "1000", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TaskListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, int64(7), resp.Tasks[0].ID)
}

func TestListTasksRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	h := NewTaskHandler(&stubTaskService{})
	rec := doRequest(t, h, http.MethodGet, "/?status=bogus", "1000", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTasksEmptyScope(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		listFn: func(_ context.Context, _ int64, _ *domain.TaskStatus) ([]*domain.Task, error) {
			return nil, nil
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodGet, "/", "1000", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tasks":[]}`, rec.Body.String())
}

func TestMarkDoneSuccess(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		doneFn: func(_ context.Context, scopeID, id int64) (*domain.Task, error) {
			assert.Equal(t, int64(1000), scopeID)
			assert.Equal(t, int64(7), id)
			task := sampleTask()
			task.Status = domain.TaskStatusDone
			return task, nil
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodPost, "/7/done", "1000", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TaskResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "DONE", resp.Status)
}

func TestMarkDoneConflictOnFinishedTask(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		doneFn: func(_ context.Context, _, _ int64) (*domain.Task, error) {
			return nil, service.ErrAlreadyFinished
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodPost, "/7/done", "1000", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelTaskConflictOnFinishedTask(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		cancelFn: func(_ context.Context, _, _ int64) (*domain.Task, error) {
			return nil, service.ErrAlreadyFinished
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodPost, "/7/cancel", "1000", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInternalErrorsAreSanitized(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		getFn: func(_ context.Context, _, _ int64) (*domain.Task, error) {
			return nil, fmt.Errorf("pq: relation %q does not exist", "tasks")
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodGet, "/7", "1000", nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
}

func TestScopeHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	// The scope flows from the header into the service call untouched.
	scope := int64(424242)
	svc := &stubTaskService{
		getFn: func(_ context.Context, scopeID, _ int64) (*domain.Task, error) {
			assert.Equal(t, scope, scopeID)
			return sampleTask(), nil
		},
	}
	rec := doRequest(t, NewTaskHandler(svc), http.MethodGet, "/7",
		strconv.FormatInt(scope, 10), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskherald/taskherald/internal/config"
	"github.com/taskherald/taskherald/internal/domain"
)

func testApplication() *application {
	return &application{
		config: &config.Config{
			Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router := testApplication().setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestTaskRoutesRequireScopeHeader(t *testing.T) {
	t.Parallel()

	router := testApplication().setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil))

	// The route is mounted and rejects the missing scope before touching
	// any service.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownRouteReturns404(t *testing.T) {
	t.Parallel()

	router := testApplication().setupRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogNotifierReportsSuccess(t *testing.T) {
	t.Parallel()

	n := newLogNotifier(slog.New(slog.NewTextHandler(io.Discard, nil)))
	task := &domain.Task{
		ID:        7,
		ChannelID: 2,
		Title:     "t",
		DueAt:     time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC),
	}

	sentAt, err := n.Send(context.Background(), task, domain.Stage{Kind: domain.StageInitialReminder})
	require.NoError(t, err)
	assert.False(t, sentAt.IsZero())
	assert.Equal(t, time.UTC, sentAt.Location())
}

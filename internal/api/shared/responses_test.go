package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithJSON(rec, req, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestRespondWithErrorIncludesTraceID(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(SetTraceID(req.Context()))

	RespondWithError(rec, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Task not found", resp.Error)
	assert.Equal(t, GetTraceID(req.Context()), resp.TraceID)
}

func TestRespondWithErrorAndLogHidesRawError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.Background())

	internal := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "An unexpected error occurred", internal)

	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
}

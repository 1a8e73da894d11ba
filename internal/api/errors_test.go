package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/service"
	"github.com/taskherald/taskherald/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ErrInvalidTitle, http.StatusBadRequest},
		{"validation root", domain.ErrValidation, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"not found", store.ErrTaskNotFound, http.StatusNotFound},
		{"already finished", service.ErrAlreadyFinished, http.StatusConflict},
		{"wrapped not found", fmt.Errorf("lookup: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{
			"wrapped in service error",
			service.NewTaskServiceError("get_task", "failed", store.ErrTaskNotFound),
			http.StatusNotFound,
		},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
	assert.Equal(t, "Task not found", GetSafeErrorMessage(store.ErrTaskNotFound))
	assert.Equal(t, "Task is already finished", GetSafeErrorMessage(service.ErrAlreadyFinished))

	// Validation messages surface without the family prefix.
	msg := GetSafeErrorMessage(domain.ErrRemindAtMustBeFuture)
	assert.Equal(t, "remind_at must be in the future", msg)

	// Internal details never leak.
	internal := errors.New("pq: connection reset while writing to tasks")
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(internal))
}

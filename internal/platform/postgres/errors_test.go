package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/taskherald/taskherald/internal/store"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	assert.NoError(t, MapError(nil))

	err := MapError(sql.ErrNoRows)
	assert.True(t, errors.Is(err, store.ErrNotFound))

	err = MapError(&pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "fk_task"})
	assert.True(t, errors.Is(err, store.ErrInvalidEntity))

	err = MapError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "ck_due_after_remind"})
	assert.True(t, errors.Is(err, store.ErrInvalidEntity))

	err = MapError(&pgconn.PgError{Code: notNullViolationCode, ColumnName: "title"})
	assert.True(t, errors.Is(err, store.ErrInvalidEntity))

	// Wrapped driver errors still map.
	wrapped := fmt.Errorf("query failed: %w", sql.ErrNoRows)
	assert.True(t, errors.Is(MapError(wrapped), store.ErrNotFound))

	// Unknown errors pass through unchanged.
	plain := errors.New("connection refused")
	assert.Equal(t, plain, MapError(plain))
}

func TestClaimDueRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewPostgresTaskStore(&sql.DB{})
	_, err := s.ClaimDue(context.Background(), store.CandidateKind("bogus"), now, now, 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown candidate kind")
}

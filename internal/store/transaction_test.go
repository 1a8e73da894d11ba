package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver is a minimal database/sql driver that records transaction
// outcomes, so RunInTransaction's commit/rollback behavior can be verified
// without a real database.
type stubDriver struct {
	mu        sync.Mutex
	commits   int
	rollbacks int
	beginErr  error
	commitErr error
}

func (d *stubDriver) Open(_ string) (driver.Conn, error) {
	return &stubConn{driver: d}, nil
}

type stubConn struct {
	driver *stubDriver
}

func (c *stubConn) Prepare(_ string) (driver.Stmt, error) {
	return nil, errors.New("not implemented")
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	c.driver.mu.Lock()
	defer c.driver.mu.Unlock()
	if c.driver.beginErr != nil {
		return nil, c.driver.beginErr
	}
	return &stubTx{driver: c.driver}, nil
}

type stubTx struct {
	driver *stubDriver
}

func (t *stubTx) Commit() error {
	t.driver.mu.Lock()
	defer t.driver.mu.Unlock()
	if t.driver.commitErr != nil {
		return t.driver.commitErr
	}
	t.driver.commits++
	return nil
}

func (t *stubTx) Rollback() error {
	t.driver.mu.Lock()
	defer t.driver.mu.Unlock()
	t.driver.rollbacks++
	return nil
}

func (d *stubDriver) counts() (commits, rollbacks int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.commits, d.rollbacks
}

func openStubDB(t *testing.T, name string, d *stubDriver) *sql.DB {
	t.Helper()
	sql.Register(name, d)
	db, err := sql.Open(name, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunInTransactionCommitsOnSuccess(t *testing.T) {
	t.Parallel()

	d := &stubDriver{}
	db := openStubDB(t, "txstub-commit", d)

	called := false
	err := RunInTransaction(context.Background(), db, func(_ context.Context, tx *sql.Tx) error {
		called = true
		require.NotNil(t, tx)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	commits, rollbacks := d.counts()
	assert.Equal(t, 1, commits)
	assert.Equal(t, 0, rollbacks)
}

func TestRunInTransactionRollsBackOnError(t *testing.T) {
	t.Parallel()

	d := &stubDriver{}
	db := openStubDB(t, "txstub-rollback", d)

	fnErr := errors.New("claim failed")
	err := RunInTransaction(context.Background(), db, func(_ context.Context, _ *sql.Tx) error {
		return fnErr
	})

	assert.ErrorIs(t, err, fnErr)
	commits, rollbacks := d.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 1, rollbacks)
}

func TestRunInTransactionRollsBackAndRepanics(t *testing.T) {
	t.Parallel()

	d := &stubDriver{}
	db := openStubDB(t, "txstub-panic", d)

	assert.PanicsWithValue(t, "boom", func() {
		_ = RunInTransaction(context.Background(), db, func(_ context.Context, _ *sql.Tx) error {
			panic("boom")
		})
	})

	commits, rollbacks := d.counts()
	assert.Equal(t, 0, commits)
	assert.Equal(t, 1, rollbacks)
}

func TestRunInTransactionReportsBeginFailure(t *testing.T) {
	t.Parallel()

	d := &stubDriver{beginErr: errors.New("too many connections")}
	db := openStubDB(t, "txstub-begin", d)

	err := RunInTransaction(context.Background(), db, func(_ context.Context, _ *sql.Tx) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}

func TestRunInTransactionReportsCommitFailure(t *testing.T) {
	t.Parallel()

	d := &stubDriver{commitErr: errors.New("deadlock detected")}
	db := openStubDB(t, "txstub-commitfail", d)

	err := RunInTransaction(context.Background(), db, func(_ context.Context, _ *sql.Tx) error {
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
}

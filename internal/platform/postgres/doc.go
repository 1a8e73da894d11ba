// Package postgres provides the PostgreSQL implementation of the
// store.TaskStore interface. It owns the SQL for the lock-skip claim
// queries (FOR UPDATE SKIP LOCKED) and the status-guarded conditional
// mutations, and maps driver errors onto the store error taxonomy.
package postgres

// Package store defines the persistence contracts of the task lifecycle
// engine: the TaskStore interface with its claim and mutation primitives,
// the DBTX abstraction over connections and transactions, the transaction
// helper, and the store error taxonomy.
//
// Implementations live under internal/platform; services and the scheduler
// depend only on this package.
package store

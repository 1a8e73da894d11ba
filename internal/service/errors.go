// Package service provides the application-level task operations sitting
// between the HTTP layer and the store.
package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// Callers check these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrAlreadyFinished indicates a user-driven transition (done/cancel)
	// was requested on a task that already reached a terminal status.
	// API layer should map this to HTTP 409 Conflict.
	ErrAlreadyFinished = errors.New("task already finished")
)

// Package notifier defines the outbound notification gateway contract
// consumed by the scheduler. The engine does not implement delivery itself;
// the chat transport behind this interface is provided by the embedding
// application. Only the three-way outcome contract is fixed here:
// success with a sent timestamp, a retryable failure, or a permanent one.
package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/taskherald/taskherald/internal/domain"
)

// Notifier attempts delivery of a single notification for the given task
// and stage.
//
// On success it returns the delivery timestamp. On failure it returns an
// error whose classification decides the task's fate: retryable failures
// (network errors, timeouts, rate limits) leave the task untouched for a
// later tick, permanent failures (destination deleted, permission revoked)
// cancel it. Errors that carry no explicit classification are treated as
// retryable, which makes a context deadline on a hung send retryable by
// default.
// Version: 1.0
type Notifier interface {
	Send(ctx context.Context, task *domain.Task, stage domain.Stage) (time.Time, error)
}

// SendError is a classified delivery failure.
type SendError struct {
	// Reason describes the failure for logs; it is never shown to end users.
	Reason string

	// Permanent marks failures that no retry can fix.
	Permanent bool
}

// Error implements the error interface for SendError.
func (e *SendError) Error() string {
	if e.Permanent {
		return "permanent delivery failure: " + e.Reason
	}
	return "retryable delivery failure: " + e.Reason
}

// Retryable builds a SendError for a failure worth retrying on a later tick.
func Retryable(reason string) *SendError {
	return &SendError{Reason: reason}
}

// NonRetryable builds a SendError for a failure no retry can fix.
func NonRetryable(reason string) *SendError {
	return &SendError{Reason: reason, Permanent: true}
}

// IsPermanent reports whether err is classified as a permanent delivery
// failure. Unclassified errors are not permanent.
func IsPermanent(err error) bool {
	var sendErr *SendError
	return errors.As(err, &sendErr) && sendErr.Permanent
}

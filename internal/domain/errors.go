package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of all domain validation errors. Specific
// validation failures wrap it so callers can match the whole family with
// errors.Is(err, ErrValidation) or a single failure by its own sentinel.
var ErrValidation = errors.New("validation failed")

// Specific validation failures. Messages are written to be safe for direct
// user display.
var (
	// ErrInvalidTitle is returned when a task title is empty or longer
	// than TitleMaxLen characters.
	ErrInvalidTitle = fmt.Errorf("%w: title must be between 1 and 200 characters", ErrValidation)

	// ErrInvalidURL is returned when a task URL is not an absolute
	// http or https URL.
	ErrInvalidURL = fmt.Errorf("%w: url must be an absolute http or https URL", ErrValidation)

	// ErrRemindAtMustBeFuture is returned when a task's reminder instant
	// is not in the future at creation time.
	ErrRemindAtMustBeFuture = fmt.Errorf("%w: remind_at must be in the future", ErrValidation)

	// ErrDueAtMustBeFuture is returned when a task's due instant is not
	// in the future at creation time.
	ErrDueAtMustBeFuture = fmt.Errorf("%w: due_at must be in the future", ErrValidation)

	// ErrDueAtBeforeRemindAt is returned when a task's due instant
	// precedes its reminder instant.
	ErrDueAtBeforeRemindAt = fmt.Errorf("%w: due_at must not be before remind_at", ErrValidation)

	// ErrInvalidPreDueHours is returned when a pre-due hour set cannot be
	// parsed or contains an hour outside [1, 168].
	ErrInvalidPreDueHours = fmt.Errorf(
		"%w: pre-due hours must be whole hours between 1 and 168",
		ErrValidation,
	)

	// ErrInvalidClosingMessage is returned when a closing message exceeds
	// ClosingMessageMaxLen characters.
	ErrInvalidClosingMessage = fmt.Errorf(
		"%w: closing message must be at most 500 characters",
		ErrValidation,
	)

	// ErrInvalidStatus is returned when a task status string is not one of
	// the known statuses.
	ErrInvalidStatus = fmt.Errorf("%w: invalid task status", ErrValidation)
)

// Package errs defines the service error taxonomy. Handlers map kinds to
// HTTP statuses; services wrap underlying causes with %w so errors.Is still
// finds the kind.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing farmer, scheme, assessment, rule,
	// waitlist entry or review item.
	ErrNotFound = errors.New("not_found")

	// ErrInvalidState marks an operation against an entity whose lifecycle
	// state forbids it (inactive scheme, passed deadline, non-draft delete,
	// advancing a terminal workflow).
	ErrInvalidState = errors.New("invalid_state")

	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation_error")

	// ErrExternalUnavailable marks a failed call to an external
	// collaborator, recoverable by the caller.
	ErrExternalUnavailable = errors.New("external_unavailable")
)

func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func InvalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func ExternalUnavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrExternalUnavailable, fmt.Sprintf(format, args...))
}

// Kind returns the taxonomy label for an error, or "internal_error" when the
// error carries no kind.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrExternalUnavailable):
		return "external_unavailable"
	}
	return "internal_error"
}

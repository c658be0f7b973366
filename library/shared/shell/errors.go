package shell

import (
	"context"
	"errors"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsConcurrencyConflictError reports a guarded write that lost against a concurrent writer.
func IsConcurrencyConflictError(err error) bool {
	return errors.Is(err, librarystore.ErrConcurrencyConflict)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}

func IsInvalidReturnError(err error) bool {
	return errors.Is(err, core.ErrInvalidReturn)
}

func IsValidationError(err error) bool {
	return errors.Is(err, core.ErrValidation)
}

// IsBusinessRejection reports errors caused by the request rather than by the system:
// unknown books or loans, invalid returns, invalid input and state conflicts.
func IsBusinessRejection(err error) bool {
	return IsNotFoundError(err) || IsInvalidReturnError(err) || IsValidationError(err) || errors.Is(err, core.ErrConflict)
}

// StatusFor maps a handler error to the status reported in metrics, spans and logs.
// Cancellation and timeouts are checked first, a canceled retry must not count as a conflict.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsConcurrencyConflictError(err):
		return StatusConcurrencyConflict
	case IsBusinessRejection(err):
		return StatusRejected
	default:
		return StatusError
	}
}

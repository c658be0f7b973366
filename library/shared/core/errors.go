package core

import (
	"errors"
	"fmt"
)

// Error categories. Concrete errors wrap exactly one of them, so callers can branch with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidReturn = errors.New("invalid return")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflicts with current state")
)

// NotFound errors.
var (
	ErrBookNotFound = fmt.Errorf("%w: book", ErrNotFound)
	ErrLoanNotFound = fmt.Errorf("%w: loan", ErrNotFound)
)

// InvalidReturn errors.
var (
	ErrLoanAlreadyReturned = fmt.Errorf("%w: loan was already returned", ErrInvalidReturn)
)

// Validation errors.
var (
	ErrUnknownQualityState   = fmt.Errorf("%w: unknown quality state", ErrValidation)
	ErrUnknownCurrency       = fmt.Errorf("%w: unknown currency", ErrValidation)
	ErrNegativeAmount        = fmt.Errorf("%w: amount must not be negative", ErrValidation)
	ErrNegativePenalty       = fmt.Errorf("%w: penalty must not be negative", ErrValidation)
	ErrInvalidBookMetadata   = fmt.Errorf("%w: book title and isbn are required", ErrValidation)
	ErrDueDateBeforeLoanDate = fmt.Errorf("%w: due date must not be before loan date", ErrValidation)
	ErrUnknownPenaltyPolicy  = fmt.Errorf("%w: unknown penalty policy", ErrValidation)
)

// Conflict errors.
var (
	ErrBookNotAvailable = fmt.Errorf("%w: book is not available", ErrConflict)
)

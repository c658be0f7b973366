package core

import (
	"time"
)

// BookIDString represents a book identifier
type BookIDString = string

// LoanIDString represents a loan identifier
type LoanIDString = string

// UserIDString represents a user identifier
type UserIDString = string

// OccurredAtTS represents when an event occurred
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return ToTimestamp(t)
}

// ToTimestamp normalizes a point in time to UTC with microsecond precision, which is what Postgres stores.
func ToTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

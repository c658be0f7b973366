package librarystore

import "context"

// ConsistencyLevel defines which database a read may be served from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary. Command handlers read book and loan
	// state right before a guarded write, so this is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica. Listings and counts can
	// tolerate slightly stale data.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "librarystore.consistency_level"

// WithStrongConsistency returns a context that routes reads to the primary database.
//
//	ctx = librarystore.WithStrongConsistency(ctx)
//	loan, err := store.FindLoanByBookID(ctx, bookID)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows reads from a replica database.
//
//	ctx = librarystore.WithEventualConsistency(ctx)
//	page, err := store.QueryBooks(ctx, filter)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// Without one, it returns StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}

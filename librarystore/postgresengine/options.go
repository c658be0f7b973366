package postgresengine

import (
	"github.com/equilobe/library-go/librarystore"
)

// Option defines a functional option for configuring the Store.
type Option func(*Store) error

// WithBooksTableName sets the name of the books table.
func WithBooksTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return librarystore.ErrEmptyTableName
		}

		s.booksTableName = tableName

		return nil
	}
}

// WithLoansTableName sets the name of the loans table.
func WithLoansTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return librarystore.ErrEmptyTableName
		}

		s.loansTableName = tableName

		return nil
	}
}

// WithJournalTableName sets the name of the journal table that records an event per state change.
func WithJournalTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return librarystore.ErrEmptyTableName
		}

		s.journalTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: row counts, durations, concurrency conflicts (production-safe)
// Warn level: non-critical issues like rollback or cleanup failures
// Error level: failures that cause the operation to fail.
func WithLogger(logger librarystore.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, which correlates log records with the active trace.
func WithContextualLogger(logger librarystore.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives read and write durations, returned row counts, database errors and concurrency conflicts.
func WithMetrics(collector librarystore.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every read and every write transaction runs in its own span.
func WithTracing(collector librarystore.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}

// Package postgresengine provides the PostgreSQL implementation of the library data store.
//
// It keeps books and loans in two tables and records every state change in a journal table
// within the same transaction. Writes are guarded by their preconditions (an open loan, an
// available or lent book), so a lost race shows up as librarystore.ErrConcurrencyConflict
// and never as a half-applied change.
//
// Key features:
//   - Multiple database adapter support (pgx.Pool, sql.DB, sqlx.DB)
//   - Optional read replica for eventually consistent reads
//   - SQL built with goqu for the postgres dialect
//   - Configurable table names, structured logging, metrics and tracing
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(
//		db,
//		postgresengine.WithLoansTableName("library_loans"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//	_ = store.Migrate(ctx)
//
//	loan, _ := store.FindLoanByBookID(ctx, bookID)
//	err := store.SaveReturn(ctx, loan, book, journalEvent)
package postgresengine

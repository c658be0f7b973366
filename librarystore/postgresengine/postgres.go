package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
	"github.com/equilobe/library-go/librarystore/postgresengine/internal/adapters"
)

const (
	defaultBooksTableName   = "books"
	defaultLoansTableName   = "loans"
	defaultJournalTableName = "library_events"
)

const (
	logMsgBuildQueryFailed      = "failed to build query"
	logMsgDBQueryFailed         = "database query execution failed"
	logMsgDBExecFailed          = "database execution failed"
	logMsgCloseRowsFailed       = "failed to close database rows"
	logMsgScanRowFailed         = "failed to scan database row"
	logMsgRowsAffectedFailed    = "failed to get rows affected count"
	logMsgBeginTxFailed         = "failed to begin transaction"
	logMsgCommitFailed          = "failed to commit transaction"
	logMsgRollbackFailed        = "failed to roll back transaction"
	logMsgConcurrencyConflict   = "concurrency conflict detected"
	logMsgConstraintViolation   = "constraint violation"
	logMsgQueryCompleted        = "query completed"
	logMsgTransactionCommitted  = "transaction committed"
	logMsgSQLExecuted           = "executed sql for: "
	logMsgOperation             = "librarystore operation: "
	logAttrError                = "error"
	logAttrQuery                = "query"
	logAttrOperation            = "operation"
	logAttrRowCount             = "row_count"
	logAttrDurationMS           = "duration_ms"
	logAttrRowsAffected         = "rows_affected"
	logAttrBookID               = "book_id"
	logAttrLoanID               = "loan_id"
	logActionRead               = "read"
	logActionWrite              = "write"
	operationFindBook           = "find_book"
	operationFindLoan           = "find_loan"
	operationQueryBooks         = "query_books"
	operationCountBooks         = "count_books"
	operationQueryLoans         = "query_loans"
	operationCountLoans         = "count_loans"
	operationFindBooksByIDs     = "find_books_by_ids"
	operationCountAvailable     = "count_available_books"
	operationInsertBook         = "insert_book"
	operationDeleteBook         = "delete_book"
	operationSaveLoan           = "save_loan"
	operationSaveReturn         = "save_return"
	operationMigrate            = "migrate"
	operationDropTables         = "drop_tables"
	operationCountJournal       = "count_journal_entries"
	errorTypeBuildQuery         = "build_query"
	errorTypeDatabaseQuery      = "database_query"
	errorTypeDatabaseExec       = "database_exec"
	errorTypeRowScan            = "row_scan"
	errorTypeRowsAffected       = "rows_affected"
	errorTypeTransaction        = "transaction"
	errorTypeConcurrency        = "concurrency_conflict"
	errorTypeConstraint         = "constraint_violation"
	errorTypeNotFound           = "not_found"
	errorTypeContext            = "context"
)

type sqlQueryString = string

// Store is the PostgreSQL implementation of the library data store.
// Reads run as single statements; every write runs in one transaction together with its journal entry.
type Store struct {
	db               adapters.DBAdapter
	booksTableName   string
	loansTableName   string
	journalTableName string
	logger           librarystore.Logger
	contextualLogger librarystore.ContextualLogger
	metricsCollector librarystore.MetricsCollector
	tracingCollector librarystore.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolAndReplica creates a new Store that serves eventually consistent reads from replica.
func NewStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBAndReplica creates a new Store that serves eventually consistent reads from replica.
func NewStoreFromSQLDBAndReplica(db *sql.DB, replica *sql.DB, options ...Option) (*Store, error) {
	if db == nil || replica == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, librarystore.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:               db,
		booksTableName:   defaultBooksTableName,
		loansTableName:   defaultLoansTableName,
		journalTableName: defaultJournalTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindBookByID loads one book, failing with core.ErrBookNotFound if there is none.
func (s *Store) FindBookByID(ctx context.Context, id uuid.UUID) (core.Book, error) {
	sqlQuery, buildErr := s.buildSelectBookByIDQuery(id)
	if buildErr != nil {
		return core.Book{}, s.buildFailed(ctx, operationFindBook, buildErr)
	}

	books, err := s.readBooks(ctx, operationFindBook, sqlQuery)
	if err != nil {
		return core.Book{}, err
	}

	if len(books) == 0 {
		return core.Book{}, core.ErrBookNotFound
	}

	return books[0], nil
}

// FindLoanByBookID loads the open loan of a book. Without an open loan it returns the most recent one,
// so a second return of the same book is reported as an invalid return and not as a missing loan.
func (s *Store) FindLoanByBookID(ctx context.Context, bookID uuid.UUID) (core.Loan, error) {
	sqlQuery, buildErr := s.buildSelectLoanByBookIDQuery(bookID)
	if buildErr != nil {
		return core.Loan{}, s.buildFailed(ctx, operationFindLoan, buildErr)
	}

	loans, err := s.readLoans(ctx, operationFindLoan, sqlQuery)
	if err != nil {
		return core.Loan{}, err
	}

	if len(loans) == 0 {
		return core.Loan{}, core.ErrLoanNotFound
	}

	return loans[0], nil
}

// QueryBooks returns one page of books matching the filter together with the total match count.
func (s *Store) QueryBooks(ctx context.Context, filter librarystore.BookFilter) (librarystore.Page[core.Book], error) {
	var empty librarystore.Page[core.Book]

	countQuery, buildErr := s.buildCountBooksQuery(filter)
	if buildErr != nil {
		return empty, s.buildFailed(ctx, operationCountBooks, buildErr)
	}

	total, err := s.readCount(ctx, operationCountBooks, countQuery)
	if err != nil {
		return empty, err
	}

	pageQuery, buildErr := s.buildSelectBooksPageQuery(filter)
	if buildErr != nil {
		return empty, s.buildFailed(ctx, operationQueryBooks, buildErr)
	}

	books, err := s.readBooks(ctx, operationQueryBooks, pageQuery)
	if err != nil {
		return empty, err
	}

	return librarystore.Page[core.Book]{
		Items:      books,
		TotalItems: total,
		PageNumber: filter.Paging().Number,
		PageSize:   filter.Paging().Size,
	}, nil
}

// QueryLoans returns one page of loans matching the filter together with the total match count.
func (s *Store) QueryLoans(ctx context.Context, filter librarystore.LoanFilter) (librarystore.Page[core.Loan], error) {
	var empty librarystore.Page[core.Loan]

	countQuery, buildErr := s.buildCountLoansQuery(filter)
	if buildErr != nil {
		return empty, s.buildFailed(ctx, operationCountLoans, buildErr)
	}

	total, err := s.readCount(ctx, operationCountLoans, countQuery)
	if err != nil {
		return empty, err
	}

	pageQuery, buildErr := s.buildSelectLoansPageQuery(filter)
	if buildErr != nil {
		return empty, s.buildFailed(ctx, operationQueryLoans, buildErr)
	}

	loans, err := s.readLoans(ctx, operationQueryLoans, pageQuery)
	if err != nil {
		return empty, err
	}

	return librarystore.Page[core.Loan]{
		Items:      loans,
		TotalItems: total,
		PageNumber: filter.Paging().Number,
		PageSize:   filter.Paging().Size,
	}, nil
}

// FindBooksByIDs loads the given books keyed by id. Unknown ids are missing from the result.
func (s *Store) FindBooksByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]core.Book, error) {
	result := make(map[uuid.UUID]core.Book, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	sqlQuery, buildErr := s.buildSelectBooksByIDsQuery(ids)
	if buildErr != nil {
		return nil, s.buildFailed(ctx, operationFindBooksByIDs, buildErr)
	}

	books, err := s.readBooks(ctx, operationFindBooksByIDs, sqlQuery)
	if err != nil {
		return nil, err
	}

	for _, book := range books {
		result[book.ID] = book
	}

	return result, nil
}

// CountAvailableBooksByISBN counts the copies of a title that can be lent right now.
func (s *Store) CountAvailableBooksByISBN(ctx context.Context, isbn string) (int, error) {
	sqlQuery, buildErr := s.buildCountAvailableByISBNQuery(isbn)
	if buildErr != nil {
		return 0, s.buildFailed(ctx, operationCountAvailable, buildErr)
	}

	return s.readCount(ctx, operationCountAvailable, sqlQuery)
}

// CountJournalEntries counts the journal entries of one event type, or of all types for "".
func (s *Store) CountJournalEntries(ctx context.Context, eventType string) (int, error) {
	sqlQuery, buildErr := s.buildCountJournalQuery(eventType)
	if buildErr != nil {
		return 0, s.buildFailed(ctx, operationCountJournal, buildErr)
	}

	return s.readCount(ctx, operationCountJournal, sqlQuery)
}

// readBooks runs a books select and converts every row.
func (s *Store) readBooks(ctx context.Context, operation string, sqlQuery sqlQueryString) ([]core.Book, error) {
	books := make([]core.Book, 0)

	err := s.read(ctx, operation, sqlQuery, func(rows adapters.DBRows) (int, error) {
		for rows.Next() {
			book, scanErr := scanBook(rows)
			if scanErr != nil {
				return len(books), scanErr
			}

			books = append(books, book)
		}

		return len(books), rows.Err()
	})

	return books, err
}

// readLoans runs a loans select and converts every row.
func (s *Store) readLoans(ctx context.Context, operation string, sqlQuery sqlQueryString) ([]core.Loan, error) {
	loans := make([]core.Loan, 0)

	err := s.read(ctx, operation, sqlQuery, func(rows adapters.DBRows) (int, error) {
		for rows.Next() {
			loan, scanErr := scanLoan(rows)
			if scanErr != nil {
				return len(loans), scanErr
			}

			loans = append(loans, loan)
		}

		return len(loans), rows.Err()
	})

	return loans, err
}

// readCount runs a single-value COUNT query.
func (s *Store) readCount(ctx context.Context, operation string, sqlQuery sqlQueryString) (int, error) {
	var count int64

	err := s.read(ctx, operation, sqlQuery, func(rows adapters.DBRows) (int, error) {
		if rows.Next() {
			if scanErr := rows.Scan(&count); scanErr != nil {
				return 0, scanErr
			}
		}

		return 1, rows.Err()
	})

	return int(count), err
}

// read executes sqlQuery and hands the rows to consume, with logging, metrics and tracing around it.
func (s *Store) read(
	ctx context.Context,
	operation string,
	sqlQuery sqlQueryString,
	consume func(rows adapters.DBRows) (int, error),
) error {

	tracing, ctx := s.startOperationTracing(ctx, operation, logActionRead)
	metrics := s.startOperationMetrics(ctx, operation, metricReadDuration)

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(ctx, sqlQuery, logActionRead, time.Since(start))

	if queryErr != nil {
		duration := time.Since(start)
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrOperation, operation, logAttrQuery, sqlQuery)
		metrics.recordError(errorTypeDatabaseQuery, duration)
		tracing.finishError(errorTypeDatabaseQuery, duration)

		return errors.Join(librarystore.ErrQueryingFailed, queryErr)
	}
	defer s.closeRows(ctx, rows)

	rowCount, scanErr := consume(rows)
	duration := time.Since(start)

	if scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, scanErr, logAttrOperation, operation)
		metrics.recordError(errorTypeRowScan, duration)
		tracing.finishError(errorTypeRowScan, duration)

		return errors.Join(librarystore.ErrScanningDBRowFailed, scanErr)
	}

	s.logOperation(ctx, logMsgQueryCompleted,
		logAttrOperation, operation,
		logAttrRowCount, rowCount,
		logAttrDurationMS, s.toMilliseconds(duration),
	)
	metrics.recordReadSuccess(rowCount, duration)
	tracing.finishSuccess(rowCount, duration)

	return nil
}

// closeRows closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// buildFailed logs and records a query that could not be built and wraps the cause.
func (s *Store) buildFailed(ctx context.Context, operation string, buildErr error) error {
	s.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrOperation, operation)
	s.recordErrorMetricsContext(ctx, operation, errorTypeBuildQuery)

	return errors.Join(librarystore.ErrBuildingQueryFailed, buildErr)
}

package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
	"github.com/equilobe/library-go/librarystore/postgresengine/internal/adapters"
)

// txStep is one guarded statement of a write transaction.
type txStep struct {
	sqlQuery sqlQueryString

	// guarded steps must affect at least one row, otherwise the transaction fails with onNoRows
	guarded  bool
	onNoRows error
}

// InsertBook adds a book and journals the given event.
// A book with the same id fails with librarystore.ErrBookAlreadyExists.
func (s *Store) InsertBook(ctx context.Context, book core.Book, event librarystore.StorableEvent) error {
	insertBook, buildErr := s.buildInsertBookQuery(book)
	if buildErr != nil {
		return s.buildFailed(ctx, operationInsertBook, buildErr)
	}

	insertEvent, buildErr := s.buildInsertJournalQuery(event)
	if buildErr != nil {
		return s.buildFailed(ctx, operationInsertBook, buildErr)
	}

	return s.write(ctx, operationInsertBook, map[string]string{logAttrBookID: book.ID.String()},
		txStep{sqlQuery: insertBook},
		txStep{sqlQuery: insertEvent},
	)
}

// DeleteBook removes a book and journals the given event.
// It fails with core.ErrBookNotFound for an unknown id and with librarystore.ErrBookHasLoans
// when loans still reference the book.
func (s *Store) DeleteBook(ctx context.Context, id uuid.UUID, event librarystore.StorableEvent) error {
	deleteBook, buildErr := s.buildDeleteBookQuery(id)
	if buildErr != nil {
		return s.buildFailed(ctx, operationDeleteBook, buildErr)
	}

	insertEvent, buildErr := s.buildInsertJournalQuery(event)
	if buildErr != nil {
		return s.buildFailed(ctx, operationDeleteBook, buildErr)
	}

	return s.write(ctx, operationDeleteBook, map[string]string{logAttrBookID: id.String()},
		txStep{sqlQuery: deleteBook, guarded: true, onNoRows: core.ErrBookNotFound},
		txStep{sqlQuery: insertEvent},
	)
}

// SaveLoan stores a new loan and marks its book as lent in one transaction.
// The book update only matches an available book; if it was lent concurrently the
// transaction is rolled back with librarystore.ErrConcurrencyConflict.
func (s *Store) SaveLoan(ctx context.Context, loan core.Loan, book core.Book, event librarystore.StorableEvent) error {
	insertLoan, buildErr := s.buildInsertLoanQuery(loan)
	if buildErr != nil {
		return s.buildFailed(ctx, operationSaveLoan, buildErr)
	}

	lendBook, buildErr := s.buildLendBookQuery(book)
	if buildErr != nil {
		return s.buildFailed(ctx, operationSaveLoan, buildErr)
	}

	insertEvent, buildErr := s.buildInsertJournalQuery(event)
	if buildErr != nil {
		return s.buildFailed(ctx, operationSaveLoan, buildErr)
	}

	return s.write(ctx, operationSaveLoan, map[string]string{logAttrBookID: book.ID.String(), logAttrLoanID: loan.ID.String()},
		txStep{sqlQuery: lendBook, guarded: true, onNoRows: librarystore.ErrConcurrencyConflict},
		txStep{sqlQuery: insertLoan},
		txStep{sqlQuery: insertEvent},
	)
}

// SaveReturn persists a returned loan and its book in one transaction and journals the event.
// The loan update only matches an open loan and the book update only matches a lent book;
// any miss rolls everything back with librarystore.ErrConcurrencyConflict.
func (s *Store) SaveReturn(ctx context.Context, loan core.Loan, book core.Book, event librarystore.StorableEvent) error {
	returnLoan, buildErr := s.buildReturnLoanQuery(loan)
	if buildErr != nil {
		return s.buildFailed(ctx, operationSaveReturn, buildErr)
	}

	returnBook, buildErr := s.buildReturnBookQuery(book)
	if buildErr != nil {
		return s.buildFailed(ctx, operationSaveReturn, buildErr)
	}

	insertEvent, buildErr := s.buildInsertJournalQuery(event)
	if buildErr != nil {
		return s.buildFailed(ctx, operationSaveReturn, buildErr)
	}

	return s.write(ctx, operationSaveReturn, map[string]string{logAttrBookID: book.ID.String(), logAttrLoanID: loan.ID.String()},
		txStep{sqlQuery: returnLoan, guarded: true, onNoRows: librarystore.ErrConcurrencyConflict},
		txStep{sqlQuery: returnBook, guarded: true, onNoRows: librarystore.ErrConcurrencyConflict},
		txStep{sqlQuery: insertEvent},
	)
}

// write runs all steps in one transaction. Any failure, including a canceled context
// before commit, rolls the transaction back.
func (s *Store) write(ctx context.Context, operation string, attrs map[string]string, steps ...txStep) error {
	tracing, ctx := s.startOperationTracing(ctx, operation, logActionWrite)
	tracing.addAttributes(attrs)
	metrics := s.startOperationMetrics(ctx, operation, metricWriteDuration)

	start := time.Now()

	fail := func(errorType string, err error) error {
		duration := time.Since(start)
		metrics.recordError(errorType, duration)
		tracing.finishError(errorType, duration)

		return err
	}

	tx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr, logAttrOperation, operation)
		return fail(errorTypeTransaction, errors.Join(librarystore.ErrBeginTransactionFailed, beginErr))
	}

	var rowsAffected int64

	for _, step := range steps {
		affected, errorType, stepErr := s.execStep(ctx, tx, operation, step)
		if stepErr != nil {
			s.rollback(ctx, tx, operation)
			if errorType == errorTypeConcurrency {
				metrics.recordConcurrencyConflict()
			}

			return fail(errorType, stepErr)
		}

		rowsAffected += affected
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.rollback(ctx, tx, operation)
		return fail(errorTypeContext, ctxErr)
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitFailed, commitErr, logAttrOperation, operation)
		s.rollback(ctx, tx, operation)

		return fail(errorTypeTransaction, errors.Join(librarystore.ErrCommitFailed, commitErr))
	}

	duration := time.Since(start)
	s.logOperation(ctx, logMsgTransactionCommitted,
		logAttrOperation, operation,
		logAttrRowsAffected, rowsAffected,
		logAttrDurationMS, s.toMilliseconds(duration),
	)
	metrics.recordWriteSuccess(rowsAffected, duration)
	tracing.finishSuccess(int(rowsAffected), duration)

	return nil
}

// execStep executes one statement and returns the affected rows, or the error type and error.
func (s *Store) execStep(ctx context.Context, tx adapters.DBTx, operation string, step txStep) (int64, string, error) {
	start := time.Now()
	result, execErr := tx.Exec(ctx, step.sqlQuery)
	s.logQueryWithDuration(ctx, step.sqlQuery, logActionWrite, time.Since(start))

	if execErr != nil {
		if mapped, ok := mapConstraintViolation(operation, execErr); ok {
			s.logOperation(ctx, logMsgConstraintViolation, logAttrOperation, operation, logAttrError, execErr.Error())
			if errors.Is(mapped, librarystore.ErrConcurrencyConflict) {
				return 0, errorTypeConcurrency, mapped
			}

			return 0, errorTypeConstraint, mapped
		}

		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrOperation, operation, logAttrQuery, step.sqlQuery)

		return 0, errorTypeDatabaseExec, errors.Join(librarystore.ErrWritingFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr, logAttrOperation, operation)
		return 0, errorTypeRowsAffected, errors.Join(librarystore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if step.guarded && rowsAffected == 0 {
		if errors.Is(step.onNoRows, librarystore.ErrConcurrencyConflict) {
			s.logOperation(ctx, logMsgConcurrencyConflict, logAttrOperation, operation, logAttrRowsAffected, rowsAffected)
			return 0, errorTypeConcurrency, step.onNoRows
		}

		return 0, errorTypeNotFound, step.onNoRows
	}

	return rowsAffected, "", nil
}

// rollback rolls back tx and logs a failure. The caller's context may be canceled already,
// so the rollback gets its own short-lived context.
func (s *Store) rollback(ctx context.Context, tx adapters.DBTx, operation string) {
	rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := tx.Rollback(rollbackCtx); err != nil {
		s.logWarn(ctx, logMsgRollbackFailed, err, logAttrOperation, operation)
	}
}

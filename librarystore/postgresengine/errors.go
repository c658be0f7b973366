package postgresengine

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

var errLoanNotReturned = errors.New("loan has no return date")

// driverErrorCode extracts the SQLSTATE code from a pgx or lib/pq error.
func driverErrorCode(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}

	return "", false
}

// mapConstraintViolation translates constraint violations of a write operation into store errors.
func mapConstraintViolation(operation string, err error) (error, bool) {
	code, ok := driverErrorCode(err)
	if !ok {
		return nil, false
	}

	switch {
	case operation == operationInsertBook && code == pgerrcode.UniqueViolation:
		return errors.Join(librarystore.ErrBookAlreadyExists, err), true

	case operation == operationDeleteBook && code == pgerrcode.ForeignKeyViolation:
		return errors.Join(librarystore.ErrBookHasLoans, err), true

	case operation == operationSaveLoan && code == pgerrcode.UniqueViolation:
		// the partial unique index allows one open loan per book
		return errors.Join(librarystore.ErrConcurrencyConflict, err), true

	case operation == operationSaveLoan && code == pgerrcode.ForeignKeyViolation:
		return errors.Join(core.ErrBookNotFound, err), true

	case code == pgerrcode.SerializationFailure || code == pgerrcode.DeadlockDetected:
		return errors.Join(librarystore.ErrConcurrencyConflict, err), true
	}

	return nil, false
}

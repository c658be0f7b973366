package postgresengine

import (
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/librarystore"
)

func Test_MapConstraintViolation(t *testing.T) {
	testCases := []struct {
		name      string
		operation string
		err       error
		wantErr   error
		mapped    bool
	}{
		{name: "pgx duplicate book", operation: operationInsertBook, err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantErr: librarystore.ErrBookAlreadyExists, mapped: true},
		{name: "lib/pq duplicate book", operation: operationInsertBook, err: &pq.Error{Code: pgerrcode.UniqueViolation}, wantErr: librarystore.ErrBookAlreadyExists, mapped: true},
		{name: "wrapped driver error", operation: operationInsertBook, err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), wantErr: librarystore.ErrBookAlreadyExists, mapped: true},
		{name: "delete referenced book", operation: operationDeleteBook, err: &pq.Error{Code: pgerrcode.ForeignKeyViolation}, wantErr: librarystore.ErrBookHasLoans, mapped: true},
		{name: "second open loan", operation: operationSaveLoan, err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, wantErr: librarystore.ErrConcurrencyConflict, mapped: true},
		{name: "loan for missing book", operation: operationSaveLoan, err: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, wantErr: core.ErrBookNotFound, mapped: true},
		{name: "serialization failure", operation: operationSaveReturn, err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, wantErr: librarystore.ErrConcurrencyConflict, mapped: true},
		{name: "deadlock", operation: operationSaveReturn, err: &pq.Error{Code: pgerrcode.DeadlockDetected}, wantErr: librarystore.ErrConcurrencyConflict, mapped: true},
		{name: "unrelated code", operation: operationSaveReturn, err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, mapped: false},
		{name: "not a driver error", operation: operationInsertBook, err: errFakeDB, mapped: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			mapped, ok := mapConstraintViolation(tc.operation, tc.err)

			// assert
			assert.Equal(t, tc.mapped, ok)
			if !tc.mapped {
				assert.NoError(t, mapped)
				return
			}

			assert.ErrorIs(t, mapped, tc.wantErr)
			assert.ErrorIs(t, mapped, tc.err, "the driver error stays inspectable")
		})
	}
}

package librarystore

import (
	"errors"
	"fmt"

	"github.com/equilobe/library-go/library/shared/core"
)

var ErrNilDatabaseConnection = errors.New("database connection is nil")
var ErrEmptyTableName = errors.New("empty table name supplied")

// ErrConcurrencyConflict signals that a guarded write matched no row because
// another writer changed the same book or loan first.
var ErrConcurrencyConflict = errors.New("concurrency error, no rows were affected")

var ErrBookAlreadyExists = fmt.Errorf("%w: book already exists", core.ErrConflict)
var ErrBookHasLoans = fmt.Errorf("%w: book has loans and cannot be removed", core.ErrConflict)
var ErrInvalidFilter = fmt.Errorf("%w: invalid filter", core.ErrValidation)

var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingFailed = errors.New("querying failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
var ErrWritingFailed = errors.New("writing failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrBeginTransactionFailed = errors.New("beginning transaction failed")
var ErrCommitFailed = errors.New("committing transaction failed")

var ErrInvalidPayloadJSON = errors.New("payload json is not valid")
var ErrInvalidMetadataJSON = errors.New("metadata json is not valid")

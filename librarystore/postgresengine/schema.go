package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/equilobe/library-go/librarystore"
)

const schemaTemplate = `
CREATE TABLE IF NOT EXISTS %[1]s (
	id                UUID PRIMARY KEY,
	title             TEXT NOT NULL,
	author_first_name TEXT NOT NULL DEFAULT '',
	author_last_name  TEXT NOT NULL DEFAULT '',
	isbn              TEXT NOT NULL,
	rent_amount       NUMERIC NOT NULL CHECK (rent_amount >= 0),
	rent_currency     TEXT NOT NULL,
	quality_state     SMALLINT NOT NULL CHECK (quality_state BETWEEN 0 AND 5),
	is_available      BOOLEAN NOT NULL DEFAULT TRUE,
	created_at        TIMESTAMP WITH TIME ZONE NOT NULL
);

CREATE INDEX IF NOT EXISTS %[1]s_isbn_available_idx ON %[1]s (isbn) WHERE is_available;

CREATE TABLE IF NOT EXISTS %[2]s (
	id            UUID PRIMARY KEY,
	book_id       UUID NOT NULL REFERENCES %[1]s (id),
	user_id       UUID NOT NULL,
	loan_date     TIMESTAMP WITH TIME ZONE NOT NULL,
	due_date      TIMESTAMP WITH TIME ZONE NOT NULL,
	return_date   TIMESTAMP WITH TIME ZONE NULL,
	paid_amount   NUMERIC NOT NULL DEFAULT 0 CHECK (paid_amount >= 0),
	paid_currency TEXT NOT NULL DEFAULT 'RON',
	CHECK (due_date >= loan_date)
);

CREATE UNIQUE INDEX IF NOT EXISTS %[2]s_one_open_loan_per_book_idx ON %[2]s (book_id) WHERE return_date IS NULL;
CREATE INDEX IF NOT EXISTS %[2]s_user_id_idx ON %[2]s (user_id);
CREATE INDEX IF NOT EXISTS %[2]s_loan_date_idx ON %[2]s (loan_date);

CREATE TABLE IF NOT EXISTS %[3]s (
	sequence_number BIGSERIAL PRIMARY KEY,
	event_type      TEXT NOT NULL,
	occurred_at     TIMESTAMP WITH TIME ZONE NOT NULL,
	payload         JSONB NOT NULL,
	metadata        JSONB NOT NULL,
	recorded_at     TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS %[3]s_event_type_idx ON %[3]s (event_type);
`

// Schema returns the DDL for the books, loans and journal tables with the given names.
// It is idempotent, so it can run on every start.
func Schema(booksTableName, loansTableName, journalTableName string) string {
	return fmt.Sprintf(schemaTemplate, booksTableName, loansTableName, journalTableName)
}

// Schema returns the DDL for the tables this Store is configured with.
func (s *Store) Schema() string {
	return Schema(s.booksTableName, s.loansTableName, s.journalTableName)
}

const dropTemplate = `DROP TABLE IF EXISTS %[3]s, %[2]s, %[1]s`

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	ddl := s.Schema()

	start := time.Now()
	_, err := s.db.Exec(ctx, ddl)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, ddl, operationMigrate, duration)

	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrOperation, operationMigrate)
		s.recordErrorMetricsContext(ctx, operationMigrate, errorTypeDatabaseExec)

		return errors.Join(librarystore.ErrWritingFailed, err)
	}

	s.logOperation(ctx, operationMigrate, logAttrDurationMS, s.toMilliseconds(duration))

	return nil
}

// DropTables removes the journal, loans and books tables of this Store.
func (s *Store) DropTables(ctx context.Context) error {
	ddl := fmt.Sprintf(dropTemplate, s.booksTableName, s.loansTableName, s.journalTableName)

	start := time.Now()
	_, err := s.db.Exec(ctx, ddl)
	s.logQueryWithDuration(ctx, ddl, operationDropTables, time.Since(start))

	if err != nil {
		s.logError(ctx, logMsgDBExecFailed, err, logAttrOperation, operationDropTables)
		s.recordErrorMetricsContext(ctx, operationDropTables, errorTypeDatabaseExec)

		return errors.Join(librarystore.ErrWritingFailed, err)
	}

	return nil
}

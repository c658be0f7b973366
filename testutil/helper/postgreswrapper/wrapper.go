// Package postgreswrapper runs the store integration tests against a real PostgreSQL database
// with any of the three supported drivers.
//
// The database is taken from LIBRARY_TEST_DATABASE_URL; without it the tests are skipped.
// The driver is selected with ADAPTER_TYPE (pgx.pool, sql.db or sqlx.db, default pgx.pool).
// Every wrapper works on its own uniquely named tables, which Close drops again.
//
//	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
//	defer wrapper.Close()
//
//	store := wrapper.GetStore()
package postgreswrapper

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/shell/config"
	"github.com/equilobe/library-go/librarystore/postgresengine"
)

// EnvTestDatabaseURL names the environment variable holding the test database DSN.
const EnvTestDatabaseURL = "LIBRARY_TEST_DATABASE_URL"

// EnvAdapterType names the environment variable selecting the driver.
const EnvAdapterType = "ADAPTER_TYPE"

// Wrapper owns a store on freshly migrated tables and the connections behind it.
type Wrapper struct {
	store        *postgresengine.Store
	tables       Tables
	closeStore   func()
	adapterType  string
	dropTablesFn func(ctx context.Context) error
}

// Tables holds the table names used by one wrapper.
type Tables struct {
	Books   string
	Loans   string
	Journal string
}

// GetStore returns the store under test.
func (w *Wrapper) GetStore() *postgresengine.Store {
	return w.store
}

// GetTables returns the table names of this wrapper.
func (w *Wrapper) GetTables() Tables {
	return w.tables
}

// AdapterType returns the driver the wrapper was built with.
func (w *Wrapper) AdapterType() string {
	return w.adapterType
}

// Close drops the tables and releases all connections.
func (w *Wrapper) Close() {
	_ = w.dropTablesFn(context.Background())
	w.closeStore()
}

// CreateWrapperWithTestConfig creates a wrapper for the configured driver or skips the test.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) *Wrapper {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv(EnvTestDatabaseURL))
	if dsn == "" {
		t.Skipf("%s is not set", EnvTestDatabaseURL)
	}

	adapterType := strings.ToLower(strings.TrimSpace(os.Getenv(EnvAdapterType)))
	if adapterType == "" {
		adapterType = config.AdapterPGXPool
	}

	suffix := strings.ReplaceAll(uuid.NewString()[:8], "-", "")
	tables := Tables{
		Books:   "books_" + suffix,
		Loans:   "loans_" + suffix,
		Journal: "library_events_" + suffix,
	}

	cfg := config.Default()
	cfg.DatabaseURL = dsn
	cfg.DBAdapter = adapterType

	allOptions := append([]postgresengine.Option{
		postgresengine.WithBooksTableName(tables.Books),
		postgresengine.WithLoansTableName(tables.Loans),
		postgresengine.WithJournalTableName(tables.Journal),
	}, options...)

	ctx := context.Background()

	store, closeStore, err := config.OpenStore(ctx, cfg, allOptions...)
	require.NoError(t, err, "error connecting to the test database")

	require.NoError(t, store.Migrate(ctx), "error migrating the test tables")

	return &Wrapper{
		store:        store,
		tables:       tables,
		closeStore:   closeStore,
		adapterType:  adapterType,
		dropTablesFn: store.DropTables,
	}
}

// CountJournalEntries counts the journal rows of one event type.
func CountJournalEntries(t testing.TB, wrapper *Wrapper, eventType string) int {
	t.Helper()

	count, err := wrapper.store.CountJournalEntries(context.Background(), eventType)
	require.NoError(t, err, "error counting journal entries")

	return count
}

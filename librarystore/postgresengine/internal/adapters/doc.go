// Package adapters provides database adapter implementations for the PostgreSQL library store.
//
// It supports three PostgreSQL database libraries: pgx.Pool, sql.DB and sqlx.DB.
// All adapters offer the same query, exec and transaction operations through
// the DBAdapter interface, so the store works with any supported connection type.
//
// Reads are routed to a replica only when one is configured and the context asks
// for eventual consistency.
package adapters

// Package config loads the deployment configuration of the library backend and builds
// the infrastructure it describes: PostgreSQL connections for the pgx.Pool, sql.DB and sqlx.DB
// drivers, the store on top of them, the slog logger and the OpenTelemetry providers.
//
// Configuration is read from a YAML file and then overridden from LIBRARY_* environment variables.
//
// This package is part of the shell (infrastructure) layer.
package config

// Package helper provides test doubles and fixtures shared by the store, handler and adapter tests:
// spies for metrics, tracing and logging plus builders for books and loans.
package helper

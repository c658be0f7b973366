// Package core contains the domain model of the library lending backend.
//
// It holds the Book and Loan aggregates, the Money and QualityState value types,
// the pluggable penalty policies, the domain events raised by state transitions,
// and the domain error taxonomy (NotFound, InvalidReturn, Validation, Conflict).
//
// Everything in this package is pure: no I/O, no clocks, no logging.
// Callers pass the current time in and get new state and events back.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core

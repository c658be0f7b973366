// Package shell is the imperative shell around the library domain.
//
// It holds what every command and query handler shares: the handler contracts,
// HandlerResult, the optimistic-concurrency retry loop, the observability helpers the
// observable wrappers build on, event metadata, and the mapping from domain events
// to journal entries and back.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'application' and 'infrastructure' layers.
package shell

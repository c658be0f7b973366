// Package observable decorates core command and query handlers with metrics, tracing and logging.
//
// The wrappers never change the outcome of a handler. They classify it (success, idempotent,
// rejected, canceled, timeout, concurrency conflict, error) and report it through the
// collectors configured with the With* options.
package observable

// Package oteladapters provides OpenTelemetry implementations of the librarystore observability
// interfaces, so the store and the command and query wrappers can report to any OTel backend
// without implementing the interfaces themselves.
//
//   - SlogBridgeLogger and OTelLogger implement librarystore.ContextualLogger
//   - MetricsCollector implements librarystore.ContextualMetricsCollector
//   - TracingCollector implements librarystore.TracingCollector
package oteladapters

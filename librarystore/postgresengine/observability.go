package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/equilobe/library-go/librarystore"
)

const (
	metricReadDuration         = "librarystore_read_duration_seconds"
	metricWriteDuration        = "librarystore_write_duration_seconds"
	metricRowsRead             = "librarystore_rows_read"
	metricRowsWritten          = "librarystore_rows_written"
	metricDatabaseErrors       = "librarystore_database_errors_total"
	metricConcurrencyConflicts = "librarystore_concurrency_conflicts_total"
	spanNamePrefix             = "librarystore."
	spanAttrOperation          = "operation"
	spanAttrAction             = "action"
	spanAttrRowCount           = "row_count"
	spanAttrErrorType          = "error_type"
	spanAttrDurationMS         = "duration_ms"
	labelStatus                = "status"
	labelConflictType          = "conflict_type"
	statusSuccess              = "success"
	statusError                = "error"
)

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (s *Store) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical failures at warn level.
func (s *Store) logWarn(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, allArgs...)
	}

	if s.logger != nil {
		s.logger.Warn(message, allArgs...)
	}
}

// logError logs failures at error level.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordErrorMetricsContext counts a database error, context-aware if the collector supports it.
func (s *Store) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := s.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// recordDurationMetricsContext records a duration, context-aware if the collector supports it.
func (s *Store) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {

	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       status,
	}

	if contextualCollector, ok := s.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricName, duration, labels)
}

// recordValueMetricsContext records a value, context-aware if the collector supports it.
func (s *Store) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	operation string,
) {

	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		labelStatus:       statusSuccess,
	}

	if contextualCollector, ok := s.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metricName, value, labels)
}

// === Tracing Observer Pattern ===

// operationTracingObserver encapsulates the span lifecycle of one read or write.
type operationTracingObserver struct {
	s    *Store
	span librarystore.SpanContext
}

// startOperationTracing starts a span named after the operation if a tracing collector is configured.
func (s *Store) startOperationTracing(
	ctx context.Context,
	operation string,
	action string,
) (*operationTracingObserver, context.Context) {

	observer := &operationTracingObserver{s: s}
	if s.tracingCollector == nil {
		return observer, ctx
	}

	newCtx, span := s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
		spanAttrOperation: operation,
		spanAttrAction:    action,
	})
	observer.span = span

	return observer, newCtx
}

func (o *operationTracingObserver) addAttributes(attrs map[string]string) {
	if o.span == nil {
		return
	}

	for key, value := range attrs {
		o.span.AddAttribute(key, value)
	}
}

func (o *operationTracingObserver) finishSuccess(rowCount int, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.s.tracingCollector.FinishSpan(o.span, statusSuccess, map[string]string{
		spanAttrRowCount:   fmt.Sprintf("%d", rowCount),
		spanAttrDurationMS: fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)),
	})
}

func (o *operationTracingObserver) finishError(errorType string, duration time.Duration) {
	if o.span == nil {
		return
	}

	o.s.tracingCollector.FinishSpan(o.span, statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)),
	})
}

// === Metrics Observer Pattern ===

// operationMetricsObserver encapsulates the metrics of one read or write.
type operationMetricsObserver struct {
	s              *Store
	ctx            context.Context
	operation      string
	durationMetric string
}

func (s *Store) startOperationMetrics(ctx context.Context, operation string, durationMetric string) *operationMetricsObserver {
	return &operationMetricsObserver{
		s:              s,
		ctx:            ctx,
		operation:      operation,
		durationMetric: durationMetric,
	}
}

func (o *operationMetricsObserver) recordReadSuccess(rowCount int, duration time.Duration) {
	o.s.recordDurationMetricsContext(o.ctx, o.durationMetric, duration, o.operation, statusSuccess)
	o.s.recordValueMetricsContext(o.ctx, metricRowsRead, float64(rowCount), o.operation)
}

func (o *operationMetricsObserver) recordWriteSuccess(rowsAffected int64, duration time.Duration) {
	o.s.recordDurationMetricsContext(o.ctx, o.durationMetric, duration, o.operation, statusSuccess)
	o.s.recordValueMetricsContext(o.ctx, metricRowsWritten, float64(rowsAffected), o.operation)
}

func (o *operationMetricsObserver) recordError(errorType string, duration time.Duration) {
	o.s.recordDurationMetricsContext(o.ctx, o.durationMetric, duration, o.operation, statusError)
	o.s.recordErrorMetricsContext(o.ctx, o.operation, errorType)
}

func (o *operationMetricsObserver) recordConcurrencyConflict() {
	if o.s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: o.operation,
		labelConflictType: "concurrency",
	}

	if contextualCollector, ok := o.s.metricsCollector.(librarystore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(o.ctx, metricConcurrencyConflicts, labels)
		return
	}

	o.s.metricsCollector.IncrementCounter(metricConcurrencyConflicts, labels)
}

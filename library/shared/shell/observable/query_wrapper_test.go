package observable_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/observable"
	. "github.com/equilobe/library-go/testutil/helper" //nolint:revive
)

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	handler := mockQueryHandler{result: mockQueryResult{Items: []string{"a", "b"}}}
	metricsCollector := NewMetricsCollectorSpy(true)
	tracingCollector := NewTracingCollectorSpy(true)
	logHandler := NewLogHandlerSpy(false)

	wrapper, err := observable.NewQueryWrapper[mockQuery, mockQueryResult](
		handler,
		observable.WithQueryMetrics[mockQuery, mockQueryResult](metricsCollector),
		observable.WithQueryTracing[mockQuery, mockQueryResult](tracingCollector),
		observable.WithQueryLogging[mockQuery, mockQueryResult](slog.New(logHandler)),
	)
	require.NoError(t, err, "error in arranging test data")

	// act
	result, err := wrapper.Handle(t.Context(), mockQuery{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.ItemCount())

	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithQueryType("TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, metricsCollector.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
		WithQueryType("TestQuery").
		Assert())
	assert.True(t, tracingCollector.HasSpanRecordForName(shell.SpanNameQueryHandle).
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, logHandler.HasInfoLogWithMessage(shell.LogMsgQueryCompleted).
		WithAttribute(shell.LogAttrItemCount, "2").
		Assert())
}

func Test_QueryWrapper_Handle_Rejected(t *testing.T) {
	// arrange
	handler := mockQueryHandler{err: core.ErrInvalidBookMetadata}
	contextualLogger := NewContextualLoggerSpy(true)
	metricsCollector := NewMetricsCollectorSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, mockQueryResult](
		handler,
		observable.WithQueryMetrics[mockQuery, mockQueryResult](metricsCollector),
		observable.WithQueryContextualLogging[mockQuery, mockQueryResult](contextualLogger),
	)
	require.NoError(t, err, "error in arranging test data")

	// act
	_, err = wrapper.Handle(t.Context(), mockQuery{})

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidBookMetadata)
	assert.True(t, contextualLogger.HasWarnLog(shell.LogMsgQueryRejected))
	assert.False(t, contextualLogger.HasInfoLog(shell.LogMsgQueryCompleted))
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).
		WithStatus(shell.StatusRejected).
		Assert())
}

func Test_QueryWrapper_Handle_Error(t *testing.T) {
	handler := mockQueryHandler{err: errors.New("connection refused")}
	contextualLogger := NewContextualLoggerSpy(true)

	wrapper, err := observable.NewQueryWrapper[mockQuery, mockQueryResult](
		handler,
		observable.WithQueryContextualLogging[mockQuery, mockQueryResult](contextualLogger),
	)
	require.NoError(t, err, "error in arranging test data")

	_, err = wrapper.Handle(t.Context(), mockQuery{})

	assert.Error(t, err)
	assert.True(t, contextualLogger.HasErrorLog(shell.LogMsgQueryFailed))
}

package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/log/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/equilobe/library-go/librarystore/oteladapters"
)

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")
	logger.Info("plain info message", "book_id", "b-1")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG","msg":"debug message"`)
	assert.Contains(t, output, `"level":"INFO","msg":"info message"`)
	assert.Contains(t, output, `"level":"WARN","msg":"warn message"`)
	assert.Contains(t, output, `"level":"ERROR","msg":"error message"`)
	assert.Contains(t, output, `"book_id":"b-1"`)
}

func Test_SlogBridgeLogger_WithAttributes(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, nil))

	// act
	logger.InfoContext(context.Background(), "query completed",
		"operation", "query_books",
		"row_count", 3,
		"duration_ms", 1.25,
	)

	// assert
	output := buf.String()
	assert.Contains(t, output, `"operation":"query_books"`)
	assert.Contains(t, output, `"row_count":3`)
	assert.Contains(t, output, `"duration_ms":1.25`)
}

func Test_SlogBridgeLogger_WithActiveSpan(t *testing.T) {
	// arrange
	provider := sdktrace.NewTracerProvider()
	defer func() { _ = provider.Shutdown(context.Background()) }()

	ctx, span := provider.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	logger := oteladapters.NewSlogBridgeLogger("test")

	// act + assert
	assert.NotPanics(t, func() {
		logger.InfoContext(ctx, "message inside a span")
	})
}

func Test_OTelLogger_AllLevelsAndOddArguments(t *testing.T) {
	logger := oteladapters.NewOTelLogger(noop.NewLoggerProvider().Logger("test"))
	ctx := context.Background()

	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug", "key", "value")
		logger.InfoContext(ctx, "info", "count", 42)
		logger.WarnContext(ctx, "warn", "dangling_key")
		logger.ErrorContext(ctx, "error", 17, "non-string key is skipped")
	})
}

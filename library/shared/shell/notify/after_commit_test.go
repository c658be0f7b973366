package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	. "github.com/equilobe/library-go/testutil/helper" //nolint:revive
)

type metadataCapturingPublisher struct {
	metadata shell.EventMetadata
	ctxErr   error
}

func (p *metadataCapturingPublisher) Publish(ctx context.Context, _ core.DomainEvent) error {
	p.metadata, _ = notify.EventMetadataFromContext(ctx)
	p.ctxErr = ctx.Err()

	return nil
}

func Test_PublishCommitted_ForwardsMetadataAndIgnoresCancellation(t *testing.T) {
	// arrange
	publisher := &metadataCapturingPublisher{}
	metadata := shell.NewCommandEventMetadata()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	// act
	published := notify.PublishCommitted(ctx, publisher, givenBookRemoved(t), metadata, notify.Observers{})

	// assert
	assert.True(t, published)
	assert.Equal(t, metadata, publisher.metadata)
	assert.NoError(t, publisher.ctxErr)
}

func Test_PublishCommitted_ReportsFailures(t *testing.T) {
	// arrange
	metricsCollector := NewMetricsCollectorSpy(true)
	contextualLogger := NewContextualLoggerSpy(true)
	publisher := &countingPublisher{err: errors.New("broker down")}

	// act
	published := notify.PublishCommitted(
		t.Context(),
		publisher,
		givenBookRemoved(t),
		shell.NewCommandEventMetadata(),
		notify.Observers{MetricsCollector: metricsCollector, ContextualLogger: contextualLogger},
	)

	// assert
	assert.False(t, published)
	assert.True(t, contextualLogger.HasWarnLog(shell.LogMsgPublishFailed))
	assert.True(t, metricsCollector.HasCounterRecordForMetric(shell.EventPublishFailuresMetric).
		WithLabel(shell.LogAttrEventType, core.BookRemovedEventType).
		Assert())
}

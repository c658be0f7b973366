package notify

import (
	"context"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
)

// Observers receive publish failures. The zero value reports nothing.
type Observers struct {
	MetricsCollector shell.MetricsCollector
	Logger           shell.Logger
	ContextualLogger shell.ContextualLogger
}

// PublishCommitted hands an already committed event to publisher and reports whether that worked.
// A failure is logged and counted but never returned: the state change stands either way.
// Publishing ignores cancellation of ctx, the caller may be gone while the commit is not.
func PublishCommitted(
	ctx context.Context,
	publisher Publisher,
	event core.DomainEvent,
	metadata shell.EventMetadata,
	observers Observers,
) bool {

	if publisher == nil {
		return true
	}

	publishCtx := WithEventMetadata(context.WithoutCancel(ctx), metadata)

	if err := publisher.Publish(publishCtx, event); err != nil {
		shell.LogPublishFailure(ctx, observers.Logger, observers.ContextualLogger, event.EventType(), err)
		shell.RecordPublishFailure(ctx, observers.MetricsCollector, event.EventType())

		return false
	}

	return true
}

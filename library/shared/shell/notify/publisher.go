package notify

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
)

const (
	logMsgEventPublished = "event published"
	logAttrOccurredAt    = "occurred_at"
	logAttrMessageID     = "message_id"
)

// Publisher delivers a committed domain event.
type Publisher interface {
	Publish(ctx context.Context, event core.DomainEvent) error
}

type metadataKey struct{}

// WithEventMetadata attaches the metadata journaled with an event, so publishers can forward it.
func WithEventMetadata(ctx context.Context, metadata shell.EventMetadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, metadata)
}

// EventMetadataFromContext returns the metadata attached by WithEventMetadata, if any.
func EventMetadataFromContext(ctx context.Context) (shell.EventMetadata, bool) {
	metadata, ok := ctx.Value(metadataKey{}).(shell.EventMetadata)
	return metadata, ok
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, core.DomainEvent) error { return nil }

// LogPublisher writes one info line per event.
type LogPublisher struct {
	logger shell.ContextualLogger
}

func NewLogPublisher(logger shell.ContextualLogger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event core.DomainEvent) error {
	args := []any{
		shell.LogAttrEventType, event.EventType(),
		logAttrOccurredAt, event.HasOccurredAt(),
	}

	if metadata, ok := EventMetadataFromContext(ctx); ok {
		args = append(args, logAttrMessageID, metadata.MessageID)
	}

	p.logger.InfoContext(ctx, logMsgEventPublished, args...)

	return nil
}

// FanOut publishes every event to all publishers concurrently and joins their errors.
type FanOut struct {
	publishers []Publisher
}

func NewFanOut(publishers ...Publisher) *FanOut {
	return &FanOut{publishers: publishers}
}

func (f *FanOut) Publish(ctx context.Context, event core.DomainEvent) error {
	errs := make([]error, len(f.publishers))

	var group errgroup.Group
	for i, publisher := range f.publishers {
		group.Go(func() error {
			errs[i] = publisher.Publish(ctx, event)
			return nil
		})
	}

	_ = group.Wait()

	return errors.Join(errs...)
}

package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/librarystore"
)

// Stream entry fields.
const (
	FieldEventType  = "event_type"
	FieldOccurredAt = "occurred_at"
	FieldPayload    = "payload"
	FieldMetadata   = "metadata"
)

const defaultMaxLen = 10000

var (
	ErrNilRedisClient      = errors.New("redis client must not be nil")
	ErrEmptyStreamName     = errors.New("stream name must not be empty")
	ErrPublishingFailed    = errors.New("publishing event to redis stream failed")
	ErrReadingStreamFailed = errors.New("reading redis stream failed")
	ErrMalformedEntry      = errors.New("malformed stream entry")
)
	ErrEmptyStreamName    = errors.New("stream name must not be empty")
	ErrPublishingFailed   = errors.New("publishing event to redis stream failed")
	ErrReadingStreamFailed = errors.New("reading redis stream failed")
	ErrMalformedEntry     = errors.New("malformed stream entry")
)

// RedisStreamPublisher appends events to a capped Redis stream with XADD.
type RedisStreamPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// RedisOption configures a RedisStreamPublisher.
type RedisOption func(*RedisStreamPublisher)

// WithMaxLen caps the stream at roughly n entries. Zero or less keeps the default.
func WithMaxLen(n int64) RedisOption {
	return func(p *RedisStreamPublisher) {
		if n > 0 {
			p.maxLen = n
		}
	}
}

func NewRedisStreamPublisher(client redis.Cmdable, stream string, options ...RedisOption) (*RedisStreamPublisher, error) {
	if client == nil {
		return nil, ErrNilRedisClient
	}

	stream = strings.TrimSpace(stream)
	if stream == "" {
		return nil, ErrEmptyStreamName
	}

	publisher := &RedisStreamPublisher{
		client: client,
		stream: stream,
		maxLen: defaultMaxLen,
	}

	for _, option := range options {
		option(publisher)
	}

	return publisher, nil
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, event core.DomainEvent) error {
	var (
		storableEvent librarystore.StorableEvent
		err           error
	)

	if metadata, ok := EventMetadataFromContext(ctx); ok {
		storableEvent, err = shell.StorableEventFrom(event, metadata)
	} else {
		storableEvent, err = shell.StorableEventWithEmptyMetadataFrom(event)
	}

	if err != nil {
		return errors.Join(ErrPublishingFailed, err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]any{
			FieldEventType:  storableEvent.EventType,
			FieldOccurredAt: storableEvent.OccurredAt.Format(time.RFC3339Nano),
			FieldPayload:    string(storableEvent.PayloadJSON),
			FieldMetadata:   string(storableEvent.MetadataJSON),
		},
	}).Err()
	if err != nil {
		return errors.Join(ErrPublishingFailed, err)
	}

	return nil
}

// ReadStream returns up to count of the oldest events in the stream, decoded back into domain events.
func ReadStream(ctx context.Context, client redis.Cmdable, stream string, count int64) ([]core.DomainEvent, error) {
	messages, err := client.XRangeN(ctx, stream, "-", "+", count).Result()
	if err != nil {
		return nil, errors.Join(ErrReadingStreamFailed, err)
	}

	events := make([]core.DomainEvent, 0, len(messages))
	for _, message := range messages {
		event, err := domainEventFrom(message)
		if err != nil {
			return nil, errors.Join(ErrReadingStreamFailed, err)
		}

		events = append(events, event)
	}

	return events, nil
}

func domainEventFrom(message redis.XMessage) (core.DomainEvent, error) {
	eventType, typeOK := message.Values[FieldEventType].(string)
	payload, payloadOK := message.Values[FieldPayload].(string)

	if !typeOK || !payloadOK {
		return nil, ErrMalformedEntry
	}

	return shell.DomainEventFrom(librarystore.StorableEvent{
		EventType:   eventType,
		PayloadJSON: []byte(payload),
	})
}

package removebook

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	"github.com/equilobe/library-go/librarystore"
)

// Store defines the store operations the CommandHandler needs.
type Store interface {
	FindBookByID(ctx context.Context, id uuid.UUID) (core.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID, event librarystore.StorableEvent) error
}

// CommandHandler runs Read -> Decide -> DeleteBook, then publishes BookRemoved.
type CommandHandler struct {
	store        Store
	publisher    notify.Publisher
	observers    notify.Observers
	clock        func() time.Time
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithPublisher sets where BookRemoved goes after the commit and who hears about publish failures.
func WithPublisher(publisher notify.Publisher, observers notify.Observers) Option {
	return func(h *CommandHandler) {
		h.publisher = publisher
		h.observers = observers
	}
}

func WithClock(clock func() time.Time) Option {
	return func(h *CommandHandler) {
		h.clock = clock
	}
}

func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store:     store,
		publisher: notify.Nop{},
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var (
		event    core.DomainEvent
		metadata shell.EventMetadata
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		event, metadata, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	notify.PublishCommitted(ctx, h.publisher, event, metadata, h.observers)

	return shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (core.DomainEvent, shell.EventMetadata, error) {
	ctx = librarystore.WithStrongConsistency(ctx)

	book, err := h.store.FindBookByID(ctx, command.BookID)
	if err != nil {
		return nil, shell.EventMetadata{}, err
	}

	result := Decide(book, h.clock())
	if err = result.HasError(); err != nil {
		return nil, shell.EventMetadata{}, err
	}

	metadata := shell.NewCommandEventMetadata()

	storableEvent, err := shell.StorableEventFrom(result.Event, metadata)
	if err != nil {
		return nil, metadata, err
	}

	if err = h.store.DeleteBook(ctx, book.ID, storableEvent); err != nil {
		return nil, metadata, err
	}

	return result.Event, metadata, nil
}

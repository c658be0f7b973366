package addbook

import (
	"context"
	"errors"
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
	InsertBook(ctx context.Context, book core.Book, event librarystore.StorableEvent) error
}

// CommandHandler runs Read -> Decide -> InsertBook with retry, then publishes BookAdded.
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

// WithPublisher sets where BookAdded goes after the commit and who hears about publish failures.
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

// Handle adds the book. Two concurrent adds of the same id end with one insert and one idempotent result.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var (
		decision Decision
		metadata shell.EventMetadata
	)

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var execErr error
		decision, metadata, execErr = h.executeCommand(retryCtx, command)

		return execErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	if decision.IsIdempotent() {
		return shell.NewIdempotentResult(retryMetrics), nil
	}

	notify.PublishCommitted(ctx, h.publisher, decision.Event, metadata, h.observers)

	return shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Decision, shell.EventMetadata, error) {
	ctx = librarystore.WithStrongConsistency(ctx)

	var existing *core.Book

	book, err := h.store.FindBookByID(ctx, command.BookID)
	switch {
	case err == nil:
		existing = &book
	case !errors.Is(err, core.ErrBookNotFound):
		return Decision{}, shell.EventMetadata{}, err
	}

	decision := Decide(existing, command, h.clock())
	if err = decision.HasError(); err != nil || decision.IsIdempotent() {
		return decision, shell.EventMetadata{}, err
	}

	metadata := shell.NewCommandEventMetadata()

	storableEvent, err := shell.StorableEventFrom(decision.Event, metadata)
	if err != nil {
		return decision, metadata, err
	}

	err = h.store.InsertBook(ctx, decision.Book, storableEvent)
	if errors.Is(err, librarystore.ErrBookAlreadyExists) {
		// lost the race against an add of the same id, the next attempt turns idempotent
		return decision, metadata, errors.Join(librarystore.ErrConcurrencyConflict, err)
	}

	return decision, metadata, err
}

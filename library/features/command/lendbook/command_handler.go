package lendbook

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
	FindLoanByBookID(ctx context.Context, bookID uuid.UUID) (core.Loan, error)
	SaveLoan(ctx context.Context, loan core.Loan, book core.Book, event librarystore.StorableEvent) error
}

// CommandHandler runs Read -> Decide -> SaveLoan with retry, then publishes BookLent.
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

// WithPublisher sets where BookLent goes after the commit and who hears about publish failures.
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

// Handle lends the book, retrying when another command changed it in between.
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

	book, err := h.store.FindBookByID(ctx, command.BookID)
	if err != nil {
		return Decision{}, shell.EventMetadata{}, err
	}

	var currentLoan *core.Loan

	loan, err := h.store.FindLoanByBookID(ctx, command.BookID)
	switch {
	case err == nil:
		currentLoan = &loan
	case !errors.Is(err, core.ErrLoanNotFound):
		return Decision{}, shell.EventMetadata{}, err
	}

	decision := Decide(book, currentLoan, command, uuid.New(), h.clock())
	if err = decision.HasError(); err != nil || decision.IsIdempotent() {
		return decision, shell.EventMetadata{}, err
	}

	metadata := shell.NewCommandEventMetadata()

	storableEvent, err := shell.StorableEventFrom(decision.Event, metadata)
	if err != nil {
		return decision, metadata, err
	}

	if err = h.store.SaveLoan(ctx, decision.Loan, decision.Book, storableEvent); err != nil {
		return decision, metadata, err
	}

	return decision, metadata, nil
}

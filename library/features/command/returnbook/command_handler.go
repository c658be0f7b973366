package returnbook

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
	FindLoanByBookID(ctx context.Context, bookID uuid.UUID) (core.Loan, error)
	FindBookByID(ctx context.Context, id uuid.UUID) (core.Book, error)
	SaveReturn(ctx context.Context, loan core.Loan, book core.Book, event librarystore.StorableEvent) error
}

// CommandHandler runs Read -> Decide -> SaveReturn with retry, then publishes BookReturned.
// External wrappers handle the command-level observability.
type CommandHandler struct {
	store            Store
	policy           core.PenaltyPolicy
	publisher        notify.Publisher
	clock            func() time.Time
	metricsCollector shell.MetricsCollector
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
	retryOptions     []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// WithPublisher sets where BookReturned goes after the commit.
func WithPublisher(publisher notify.Publisher) Option {
	return func(h *CommandHandler) {
		h.publisher = publisher
	}
}

func WithClock(clock func() time.Time) Option {
	return func(h *CommandHandler) {
		h.clock = clock
	}
}

// WithMetrics records charged penalties and publish failures.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(h *CommandHandler) {
		h.metricsCollector = collector
	}
}

func WithLogger(logger shell.Logger) Option {
	return func(h *CommandHandler) {
		h.logger = logger
	}
}

func WithContextualLogger(logger shell.ContextualLogger) Option {
	return func(h *CommandHandler) {
		h.contextualLogger = logger
	}
}

// NewCommandHandler creates a CommandHandler charging penalties with policy.
func NewCommandHandler(store Store, policy core.PenaltyPolicy, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store:     store,
		policy:    policy,
		publisher: notify.Nop{},
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle returns the book, retrying on concurrency conflicts with exponential backoff.
// Every attempt re-reads loan and book, so a return that won a race surfaces here
// as core.ErrLoanAlreadyReturned.
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

	shell.RecordPenalty(ctx, h.metricsCollector, h.policy.Name(), decision.Penalty.Amount, string(decision.Penalty.Currency))

	notify.PublishCommitted(ctx, h.publisher, decision.Event, metadata, notify.Observers{
		MetricsCollector: h.metricsCollector,
		Logger:           h.logger,
		ContextualLogger: h.contextualLogger,
	})

	return shell.NewSuccessResult(retryMetrics), nil
}

// executeCommand is one attempt; it may be retried.
func (h CommandHandler) executeCommand(ctx context.Context, command Command) (Decision, shell.EventMetadata, error) {
	ctx = librarystore.WithStrongConsistency(ctx)

	loan, err := h.store.FindLoanByBookID(ctx, command.BookID)
	if err != nil {
		return Decision{}, shell.EventMetadata{}, err
	}

	book, err := h.store.FindBookByID(ctx, command.BookID)
	if err != nil {
		return Decision{}, shell.EventMetadata{}, err
	}

	decision := Decide(loan, book, command, h.policy, h.clock())
	if err = decision.HasError(); err != nil {
		return decision, shell.EventMetadata{}, err
	}

	metadata := shell.NewCommandEventMetadata()

	storableEvent, err := shell.StorableEventFrom(decision.Event, metadata)
	if err != nil {
		return decision, metadata, err
	}

	if err = h.store.SaveReturn(ctx, decision.Loan, decision.Book, storableEvent); err != nil {
		return decision, metadata, err
	}

	return decision, metadata, nil
}

package main

import (
	"log/slog"

	"github.com/equilobe/library-go/library/features/command/addbook"
	"github.com/equilobe/library-go/library/features/command/lendbook"
	"github.com/equilobe/library-go/library/features/command/removebook"
	"github.com/equilobe/library-go/library/features/command/returnbook"
	"github.com/equilobe/library-go/library/features/query/availablecopies"
	"github.com/equilobe/library-go/library/features/query/books"
	"github.com/equilobe/library-go/library/features/query/loans"
	"github.com/equilobe/library-go/library/shared/core"
	"github.com/equilobe/library-go/library/shared/shell"
	"github.com/equilobe/library-go/library/shared/shell/dispatch"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	"github.com/equilobe/library-go/library/shared/shell/observable"
)

// libraryStore is everything the feature handlers read and write.
type libraryStore interface {
	addbook.Store
	removebook.Store
	lendbook.Store
	returnbook.Store
	books.Store
	loans.Store
	availablecopies.Store
}

// observability holds the adapters handlers report to. Nil collectors are skipped.
type observability struct {
	logger     *slog.Logger
	contextual shell.ContextualLogger
	metrics    shell.MetricsCollector
	tracing    shell.TracingCollector
}

func (obs observability) observers() notify.Observers {
	return notify.Observers{
		MetricsCollector: obs.metrics,
		ContextualLogger: obs.contextual,
	}
}

// newDispatcher builds every feature handler, wraps it with observability and registers it.
func newDispatcher(
	store libraryStore,
	policy core.PenaltyPolicy,
	publisher notify.Publisher,
	obs observability,
) (*dispatch.Dispatcher, error) {

	d := dispatch.NewDispatcher()
	observers := obs.observers()

	returnOptions := []returnbook.Option{
		returnbook.WithPublisher(publisher),
		returnbook.WithRetryOptions(retryOptions(obs, returnbook.Command{}.CommandType())...),
	}
	if obs.metrics != nil {
		returnOptions = append(returnOptions, returnbook.WithMetrics(obs.metrics))
	}
	if obs.contextual != nil {
		returnOptions = append(returnOptions, returnbook.WithContextualLogger(obs.contextual))
	}

	registrations := []func() error{
		func() error {
			return registerCommand[addbook.Command](d, obs, addbook.NewCommandHandler(store,
				addbook.WithPublisher(publisher, observers),
				addbook.WithRetryOptions(retryOptions(obs, addbook.Command{}.CommandType())...),
			))
		},
		func() error {
			return registerCommand[removebook.Command](d, obs, removebook.NewCommandHandler(store,
				removebook.WithPublisher(publisher, observers),
				removebook.WithRetryOptions(retryOptions(obs, removebook.Command{}.CommandType())...),
			))
		},
		func() error {
			return registerCommand[lendbook.Command](d, obs, lendbook.NewCommandHandler(store,
				lendbook.WithPublisher(publisher, observers),
				lendbook.WithRetryOptions(retryOptions(obs, lendbook.Command{}.CommandType())...),
			))
		},
		func() error {
			return registerCommand[returnbook.Command](d, obs, returnbook.NewCommandHandler(store, policy, returnOptions...))
		},
		func() error {
			return registerQuery[books.Query, books.Result](d, obs, books.NewQueryHandler(store))
		},
		func() error {
			return registerQuery[loans.Query, loans.Result](d, obs, loans.NewQueryHandler(store))
		},
		func() error {
			return registerQuery[availablecopies.Query, availablecopies.Result](d, obs, availablecopies.NewQueryHandler(store))
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func retryOptions(obs observability, commandType string) []shell.RetryOption {
	if obs.metrics == nil {
		return nil
	}

	return []shell.RetryOption{shell.WithMetrics(obs.metrics, commandType)}
}

func registerCommand[C shell.Command](d *dispatch.Dispatcher, obs observability, handler shell.CoreCommandHandler[C]) error {
	var options []observable.CommandOption[C]

	if obs.metrics != nil {
		options = append(options, observable.WithCommandMetrics[C](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithCommandTracing[C](obs.tracing))
	}

	if obs.contextual != nil {
		options = append(options, observable.WithCommandContextualLogging[C](obs.contextual))
	}

	wrapped, err := observable.NewCommandWrapper(handler, options...)
	if err != nil {
		return err
	}

	return dispatch.RegisterCommand[C](d, wrapped)
}

func registerQuery[Q shell.Query, R shell.QueryResult](d *dispatch.Dispatcher, obs observability, handler shell.CoreQueryHandler[Q, R]) error {
	var options []observable.QueryOption[Q, R]

	if obs.metrics != nil {
		options = append(options, observable.WithQueryMetrics[Q, R](obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, observable.WithQueryTracing[Q, R](obs.tracing))
	}

	if obs.contextual != nil {
		options = append(options, observable.WithQueryContextualLogging[Q, R](obs.contextual))
	}

	wrapped, err := observable.NewQueryWrapper(handler, options...)
	if err != nil {
		return err
	}

	return dispatch.RegisterQuery[Q, R](d, wrapped)
}

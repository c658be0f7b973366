package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/equilobe/library-go/library/shared/shell/config"
	"github.com/equilobe/library-go/library/shared/shell/dispatch"
	"github.com/equilobe/library-go/library/shared/shell/notify"
	"github.com/equilobe/library-go/librarystore/oteladapters"
	"github.com/equilobe/library-go/librarystore/postgresengine"
)

const instrumentationName = "github.com/equilobe/library-go/library/cmd/libraryctl"

// app owns every long-lived resource a subcommand may need.
type app struct {
	dispatcher  *dispatch.Dispatcher
	redis       redis.Cmdable
	redisStream string
	closers     []func()
}

func newApp(ctx context.Context, cfg config.Config, logOutput io.Writer) (*app, error) {
	application := &app{redisStream: cfg.RedisStream}

	obs, err := application.setUpObservability(ctx, cfg, logOutput)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := config.OpenStore(ctx, cfg, obs.storeOptions()...)
	if err != nil {
		application.Close()
		return nil, err
	}
	application.closers = append(application.closers, closeStore)

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			application.Close()
			return nil, err
		}
	}

	policy, err := cfg.Policy()
	if err != nil {
		application.Close()
		return nil, err
	}

	publisher := application.setUpPublisher(cfg, obs)

	application.dispatcher, err = newDispatcher(store, policy, publisher, obs)
	if err != nil {
		application.Close()
		return nil, err
	}

	return application, nil
}

// setUpObservability always logs; metrics and traces are exported only when an OTLP endpoint is configured.
func (a *app) setUpObservability(ctx context.Context, cfg config.Config, logOutput io.Writer) (observability, error) {
	logger, err := config.NewLogger(cfg, logOutput)
	if err != nil {
		return observability{}, err
	}

	obs := observability{
		logger:     logger,
		contextual: oteladapters.NewSlogBridgeLoggerWithHandler(logger.Handler()),
	}

	if cfg.OTELEndpoint == "" {
		return obs, nil
	}

	providers, err := config.NewObservabilityProviders(ctx, cfg)
	if err != nil {
		return observability{}, err
	}

	a.closers = append(a.closers, func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("shutting down observability providers failed", slog.String("error", shutdownErr.Error()))
		}
	})

	obs.metrics = oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))
	obs.tracing = oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))

	return obs, nil
}

// setUpPublisher logs every committed event and also streams it to Redis when redisAddr is set.
func (a *app) setUpPublisher(cfg config.Config, obs observability) notify.Publisher {
	logPublisher := notify.NewLogPublisher(obs.contextual)

	if cfg.RedisAddr == "" {
		return logPublisher
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	a.redis = client
	a.closers = append(a.closers, func() { _ = client.Close() })

	redisPublisher, err := notify.NewRedisStreamPublisher(client, cfg.RedisStream)
	if err != nil {
		obs.logger.Warn("redis publishing disabled", slog.String("error", err.Error()))
		return logPublisher
	}

	return notify.NewFanOut(logPublisher, redisPublisher)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}

	a.closers = nil
}

var errNoRedis = errors.New("redisAddr is not configured")

// eventStream returns the Redis client events are published to.
func (a *app) eventStream() (redis.Cmdable, string, error) {
	if a.redis == nil {
		return nil, "", errNoRedis
	}

	return a.redis, a.redisStream, nil
}

func (obs observability) storeOptions() []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithContextualLogger(obs.contextual)}

	if obs.metrics != nil {
		options = append(options, postgresengine.WithMetrics(obs.metrics))
	}

	if obs.tracing != nil {
		options = append(options, postgresengine.WithTracing(obs.tracing))
	}

	return options
}

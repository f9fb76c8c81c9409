package config

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jonwraymond/doccache/cache"
	"github.com/jonwraymond/doccache/health"
	"github.com/jonwraymond/doccache/observe"
)

// Runtime is a cache opened from a Config together with its telemetry and
// health checks.
type Runtime struct {
	Cache    cache.Cache
	Observer observe.Observer
	Health   *health.Aggregator
}

// Open starts telemetry, opens the configured backend and registers a health
// checker for every level that has one. Cache operations are traced,
// counted and logged through the observer.
func Open(ctx context.Context, cfg *Config) (*Runtime, error) {
	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, errors.Join(err, obs.Shutdown(ctx))
	}

	backend, err := cache.Open(ctx, cfg.CacheConfig(), cache.WithLogger(obs.Logger()))
	if err != nil {
		return nil, errors.Join(err, obs.Shutdown(ctx))
	}

	agg := health.NewAggregator(0)
	registerCheckers(agg, backend)

	obs.Logger().Info(ctx, "cache opened",
		observe.Field{Key: "backend", Value: cache.BackendName(backend)},
		observe.Field{Key: "endpoint", Value: cfg.Cache.RemoteEndpoint},
	)

	return &Runtime{
		Cache:    cache.NewObservedCache(backend, cache.BackendName(backend), mw),
		Observer: obs,
		Health:   agg,
	}, nil
}

// Close releases the backend connection and flushes telemetry.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if closer, ok := r.Cache.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, r.Observer.Shutdown(ctx))
	return errors.Join(errs...)
}

func registerCheckers(agg *health.Aggregator, c cache.Cache) {
	switch b := c.(type) {
	case *cache.MemoryCache:
		agg.Register(b.Checker(health.CapacityCheckerConfig{}))
	case *cache.TieredCache:
		l1, l2 := b.Levels()
		registerCheckers(agg, l1)
		registerCheckers(agg, l2)
	case health.Checker:
		agg.Register(b)
	}
}

package cache

import (
	"context"
	"io"
	"time"

	"github.com/jonwraymond/doccache/observe"
)

// ObservedCache decorates a Cache with spans, metrics and debug logs for
// every operation. It preserves the wrapped cache's semantics exactly.
type ObservedCache struct {
	next    Cache
	backend string
	mw      *observe.Middleware
}

// NewObservedCache wraps next. backend names it in telemetry (memory,
// redis, natskv, tiered).
func NewObservedCache(next Cache, backend string, mw *observe.Middleware) *ObservedCache {
	if mw == nil {
		mw = observe.NewMiddleware(nil, nil, nil)
	}
	return &ObservedCache{next: next, backend: backend, mw: mw}
}

func (c *ObservedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	hit := c.mw.ObserveLookup(ctx, c.meta("get", key), func(ctx context.Context) bool {
		var ok bool
		value, ok = c.next.Get(ctx, key)
		return ok
	})
	return value, hit
}

func (c *ObservedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.mw.Observe(ctx, c.meta("set", key), func(ctx context.Context) error {
		return c.next.Set(ctx, key, value, ttl)
	})
}

func (c *ObservedCache) Delete(ctx context.Context, key string) error {
	return c.mw.Observe(ctx, c.meta("delete", key), func(ctx context.Context) error {
		return c.next.Delete(ctx, key)
	})
}

func (c *ObservedCache) Clear(ctx context.Context) error {
	return c.mw.Observe(ctx, c.meta("clear", ""), c.next.Clear)
}

func (c *ObservedCache) Exists(ctx context.Context, key string) bool {
	return c.mw.ObserveLookup(ctx, c.meta("exists", key), func(ctx context.Context) bool {
		return c.next.Exists(ctx, key)
	})
}

// Unwrap returns the decorated cache.
func (c *ObservedCache) Unwrap() Cache {
	return c.next
}

// Close closes the decorated cache if it is closable.
func (c *ObservedCache) Close() error {
	if closer, ok := c.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *ObservedCache) meta(op, key string) observe.OpMeta {
	return observe.OpMeta{Backend: c.backend, Op: op, Family: Family(key)}
}

// BackendName reports the telemetry name for a cache built by this package.
func BackendName(c Cache) string {
	switch v := c.(type) {
	case *MemoryCache:
		return "memory"
	case *RedisCache:
		return "redis"
	case *NATSCache:
		return "natskv"
	case *TieredCache:
		return "tiered"
	case *ObservedCache:
		return v.backend
	default:
		return "custom"
	}
}

var _ Cache = (*ObservedCache)(nil)

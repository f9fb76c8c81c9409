package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/doccache/health"
	"github.com/jonwraymond/doccache/observe"
	"github.com/jonwraymond/doccache/resilience"
)

// RedisCache maps the Cache capability onto Redis commands.
//
// The underlying *redis.Client is a pooled, concurrency-safe handle shared by
// every call; this type adds no locking and no pool management of its own.
//
// Fail-open: any error on Get or Exists is reported as a miss. Set, Delete
// and Clear return failures wrapped in ErrBackendUnavailable for logging and
// metrics only. No retries and no timeouts are added here; bound latency
// with a context deadline if needed.
//
// HAZARD: Clear issues FLUSHDB. It removes every key in the logical
// database the client is connected to, including keys written by other
// applications sharing that database.
type RedisCache struct {
	client *redis.Client
	addr   string
	owned  bool

	logger  observe.Logger
	breaker *resilience.CircuitBreaker
}

// RemoteOption configures a remote backend.
type RemoteOption func(*remoteOptions)

type remoteOptions struct {
	logger  observe.Logger
	breaker *resilience.CircuitBreaker
}

// WithLogger logs swallowed backend failures.
func WithLogger(logger observe.Logger) RemoteOption {
	return func(o *remoteOptions) {
		o.logger = logger
	}
}

// WithCircuitBreaker short-circuits RedisCache and NATSCache operations to
// their fail-open outcome while the breaker is open, sparing a sick store
// from further traffic.
func WithCircuitBreaker(cb *resilience.CircuitBreaker) RemoteOption {
	return func(o *remoteOptions) {
		o.breaker = cb
	}
}

func applyRemoteOptions(opts []RemoteOption) remoteOptions {
	o := remoteOptions{logger: observe.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = observe.NewNopLogger()
	}
	return o
}

// NewRedisCache dials the Redis endpoint (redis://, rediss:// or unix://)
// and verifies it with PING. A failed ping closes the client and returns
// ErrBackendConstruction.
func NewRedisCache(ctx context.Context, endpoint string, opts ...RemoteOption) (*RedisCache, error) {
	redisOpts, err := redis.ParseURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: parse redis endpoint: %w", ErrInvalidConfig, err)
	}

	client := redis.NewClient(redisOpts)
	c, err := newRedisCache(ctx, client, true, opts)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return c, nil
}

// NewRedisCacheFromClient wraps an existing client after the same PING
// check. The caller keeps ownership: Close does not close client.
func NewRedisCacheFromClient(ctx context.Context, client *redis.Client, opts ...RemoteOption) (*RedisCache, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: redis client is nil", ErrBackendConstruction)
	}
	return newRedisCache(ctx, client, false, opts)
}

func newRedisCache(ctx context.Context, client *redis.Client, owned bool, opts []RemoteOption) (*RedisCache, error) {
	o := applyRemoteOptions(opts)
	c := &RedisCache{
		client:  client,
		addr:    client.Options().Addr,
		owned:   owned,
		logger:  o.logger,
		breaker: o.breaker,
	}

	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: redis ping %s: %w", ErrBackendConstruction, c.addr, err)
	}

	c.logger.Info(ctx, "redis cache connected", observe.Field{Key: "addr", Value: c.addr})
	return c, nil
}

// Get issues GET. Any failure is a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	var (
		value []byte
		found bool
	)
	err := c.do(ctx, func(ctx context.Context) error {
		b, err := c.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		value, found = b, true
		return nil
	})
	if err != nil {
		_ = c.swallow(ctx, "get", key, err)
		return nil, false
	}
	return value, found
}

// Set issues SET with a millisecond-precision expiry when ttl > 0 and a
// plain SET otherwise.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		// Negative durations mean KEEPTTL to go-redis.
		ttl = 0
	}
	err := c.do(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, key, value, ttl).Err()
	})
	return c.swallow(ctx, "set", key, err)
}

// Delete issues DEL.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	err := c.do(ctx, func(ctx context.Context) error {
		return c.client.Del(ctx, key).Err()
	})
	return c.swallow(ctx, "delete", key, err)
}

// Clear issues FLUSHDB.
//
// HAZARD: this empties the whole logical database, not only keys written
// through this cache.
func (c *RedisCache) Clear(ctx context.Context) error {
	err := c.do(ctx, func(ctx context.Context) error {
		return c.client.FlushDB(ctx).Err()
	})
	return c.swallow(ctx, "clear", "", err)
}

// Exists issues EXISTS. Any failure reports false.
func (c *RedisCache) Exists(ctx context.Context, key string) bool {
	var n int64
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		n, err = c.client.Exists(ctx, key).Result()
		return err
	})
	if err != nil {
		_ = c.swallow(ctx, "exists", key, err)
		return false
	}
	return n > 0
}

// TTL issues PTTL. A key without an expiry reports NoExpiry; a missing key
// or any failure reports false.
func (c *RedisCache) TTL(ctx context.Context, key string) (time.Duration, bool) {
	var d time.Duration
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		d, err = c.client.PTTL(ctx, key).Result()
		return err
	})
	if err != nil {
		_ = c.swallow(ctx, "ttl", key, err)
		return 0, false
	}
	switch {
	case d == -1:
		return NoExpiry, true
	case d <= 0:
		// -2: no such key.
		return 0, false
	default:
		return d, true
	}
}

// Ping round-trips PING, bypassing the circuit breaker.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Name returns the health checker name.
func (c *RedisCache) Name() string {
	return "cache.redis"
}

// Check reports whether the Redis server answers PING.
func (c *RedisCache) Check(ctx context.Context) health.Result {
	return health.Ping(ctx, c, c.addr)
}

// Close releases the client if this cache created it.
func (c *RedisCache) Close() error {
	if !c.owned {
		return nil
	}
	return c.client.Close()
}

func (c *RedisCache) do(ctx context.Context, op func(context.Context) error) error {
	if c.breaker == nil {
		return op(ctx)
	}
	return c.breaker.Execute(ctx, op)
}

func (c *RedisCache) swallow(ctx context.Context, op, key string, err error) error {
	return swallowRemote(ctx, c.logger, "redis", op, key, err)
}

// swallowRemote logs a remote failure and wraps it as informational.
func swallowRemote(ctx context.Context, logger observe.Logger, backend, op, key string, err error) error {
	if err == nil {
		return nil
	}

	fields := []observe.Field{
		{Key: "backend", Value: backend},
		{Key: "op", Value: op},
		{Key: "error", Value: err.Error()},
	}
	if key != "" {
		fields = append(fields, observe.Field{Key: "key", Value: key})
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		logger.Debug(ctx, "cache operation skipped", fields...)
	} else {
		logger.Warn(ctx, "cache operation failed", fields...)
	}

	return fmt.Errorf("%w: %s %s: %w", ErrBackendUnavailable, backend, op, err)
}

var (
	_ Cache              = (*RedisCache)(nil)
	_ TTLReporter        = (*RedisCache)(nil)
	_ health.PingChecker = (*RedisCache)(nil)
)

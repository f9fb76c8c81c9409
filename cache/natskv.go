package cache

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/jonwraymond/doccache/health"
	"github.com/jonwraymond/doccache/observe"
	"github.com/jonwraymond/doccache/resilience"
)

// DefaultNATSBucket is the KV bucket used when the endpoint names none.
const DefaultNATSBucket = "doccache"

// entryHeaderLen is the size of the expiry prefix on every stored value.
const entryHeaderLen = 8

// NATSCache maps the Cache capability onto a NATS JetStream KeyValue bucket.
//
// A single *nats.Conn multiplexes every request, so the cache is shared by
// all callers without a pool. Each value is framed with an 8-byte big-endian
// expiry (unix nanoseconds, zero for none) which Get and Exists check, giving
// per-key TTL on buckets that only support a bucket-wide MaxAge. Keys are
// base64url encoded because KV keys reject spaces and colons.
//
// Fail-open semantics match RedisCache.
//
// HAZARD: Clear purges every key in the bucket, including keys written by
// other applications sharing it.
type NATSCache struct {
	kv      jetstream.KeyValue
	conn    *nats.Conn
	logger  observe.Logger
	breaker *resilience.CircuitBreaker

	now func() time.Time
}

// NewNATSCache connects to a nats:// endpoint whose path names the bucket
// (nats://host:4222/bucket), creating the bucket if needed, and checks it.
func NewNATSCache(ctx context.Context, endpoint string, opts ...RemoteOption) (*NATSCache, error) {
	serverURL, bucket, err := parseNATSEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	nc, err := nats.Connect(serverURL)
	if err != nil {
		return nil, fmt.Errorf("%w: nats connect: %w", ErrBackendConstruction, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: jetstream init: %w", ErrBackendConstruction, err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "doccache lookup results",
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: kv bucket %s: %w", ErrBackendConstruction, bucket, err)
	}

	c, err := NewNATSCacheFromKeyValue(ctx, kv, opts...)
	if err != nil {
		nc.Close()
		return nil, err
	}
	c.conn = nc
	return c, nil
}

// NewNATSCacheFromKeyValue wraps an existing bucket after a status check.
// The caller keeps ownership of the connection.
func NewNATSCacheFromKeyValue(ctx context.Context, kv jetstream.KeyValue, opts ...RemoteOption) (*NATSCache, error) {
	if kv == nil {
		return nil, fmt.Errorf("%w: kv bucket is nil", ErrBackendConstruction)
	}
	o := applyRemoteOptions(opts)
	c := &NATSCache{kv: kv, logger: o.logger, breaker: o.breaker, now: time.Now}

	if err := c.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: kv status %s: %w", ErrBackendConstruction, kv.Bucket(), err)
	}
	c.logger.Info(ctx, "nats kv cache connected", observe.Field{Key: "bucket", Value: kv.Bucket()})
	return c, nil
}

// Get fetches and unframes the value. Missing, expired, corrupt or
// unreachable entries are all misses; an expired entry is deleted.
func (c *NATSCache) Get(ctx context.Context, key string) ([]byte, bool) {
	entry, ok := c.load(ctx, "get", key)
	if !ok {
		return nil, false
	}
	return entry.Value, true
}

// Set frames and stores the value.
func (c *NATSCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	payload := encodeEntry(NewEntry(value, ttl, c.now()))
	err := c.do(ctx, func(ctx context.Context) error {
		_, err := c.kv.Put(ctx, encodeKVKey(key), payload)
		return err
	})
	return swallowRemote(ctx, c.logger, "natskv", "set", key, err)
}

// Delete removes the key. A missing key is not an error.
func (c *NATSCache) Delete(ctx context.Context, key string) error {
	err := c.do(ctx, func(ctx context.Context) error {
		err := c.kv.Delete(ctx, encodeKVKey(key))
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	return swallowRemote(ctx, c.logger, "natskv", "delete", key, err)
}

// Clear purges every key in the bucket.
//
// HAZARD: the whole bucket is emptied.
func (c *NATSCache) Clear(ctx context.Context) error {
	err := c.do(ctx, c.purgeAll)
	return swallowRemote(ctx, c.logger, "natskv", "clear", "", err)
}

func (c *NATSCache) purgeAll(ctx context.Context) error {
	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil
		}
		return err
	}
	defer func() { _ = lister.Stop() }()

	var errs []error
	for k := range lister.Keys() {
		if err := c.kv.Purge(ctx, k); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Exists reports whether a live entry is stored.
func (c *NATSCache) Exists(ctx context.Context, key string) bool {
	_, ok := c.load(ctx, "exists", key)
	return ok
}

// TTL reads the expiry header of the stored entry.
func (c *NATSCache) TTL(ctx context.Context, key string) (time.Duration, bool) {
	entry, ok := c.load(ctx, "ttl", key)
	if !ok {
		return 0, false
	}
	if entry.ExpiresAt.IsZero() {
		return NoExpiry, true
	}
	remaining := entry.ExpiresAt.Sub(c.now())
	return remaining, remaining > 0
}

// Ping queries the bucket status, bypassing the circuit breaker.
func (c *NATSCache) Ping(ctx context.Context) error {
	_, err := c.kv.Status(ctx)
	return err
}

// Name returns the health checker name.
func (c *NATSCache) Name() string {
	return "cache.natskv"
}

// Check reports whether the bucket answers a status request.
func (c *NATSCache) Check(ctx context.Context) health.Result {
	return health.Ping(ctx, c, c.kv.Bucket())
}

// Close drains the connection if this cache opened it.
func (c *NATSCache) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Drain()
}

func (c *NATSCache) do(ctx context.Context, op func(context.Context) error) error {
	if c.breaker == nil {
		return op(ctx)
	}
	return c.breaker.Execute(ctx, op)
}

func (c *NATSCache) load(ctx context.Context, op, key string) (Entry, bool) {
	kvKey := encodeKVKey(key)
	var raw jetstream.KeyValueEntry
	err := c.do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = c.kv.Get(ctx, kvKey)
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		_ = swallowRemote(ctx, c.logger, "natskv", op, key, err)
		return Entry{}, false
	}
	if raw == nil {
		return Entry{}, false
	}

	entry, err := decodeEntry(raw.Value())
	if err != nil {
		_ = swallowRemote(ctx, c.logger, "natskv", op, key, err)
		return Entry{}, false
	}
	if entry.Expired(c.now()) {
		_ = c.kv.Delete(ctx, kvKey)
		return Entry{}, false
	}
	return entry, true
}

var errShortEntry = errors.New("cache: stored entry is truncated")

func encodeEntry(e Entry) []byte {
	buf := make([]byte, entryHeaderLen+len(e.Value))
	if !e.ExpiresAt.IsZero() {
		binary.BigEndian.PutUint64(buf, uint64(e.ExpiresAt.UnixNano()))
	}
	copy(buf[entryHeaderLen:], e.Value)
	return buf
}

func decodeEntry(b []byte) (Entry, error) {
	if len(b) < entryHeaderLen {
		return Entry{}, errShortEntry
	}
	var e Entry
	if ns := binary.BigEndian.Uint64(b); ns != 0 {
		e.ExpiresAt = time.Unix(0, int64(ns))
	}
	e.Value = cloneBytes(b[entryHeaderLen:])
	return e, nil
}

func encodeKVKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// parseNATSEndpoint splits nats://host:port/bucket into a server URL and
// a bucket name.
func parseNATSEndpoint(endpoint string) (serverURL, bucket string, err error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", fmt.Errorf("%w: parse nats endpoint: %w", ErrInvalidConfig, err)
	}
	if u.Scheme != "nats" && u.Scheme != "tls" {
		return "", "", fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnsupportedScheme, u.Scheme)
	}

	bucket = strings.Trim(u.Path, "/")
	if bucket == "" {
		bucket = DefaultNATSBucket
	}
	u.Path = ""
	return u.String(), bucket, nil
}

var (
	_ Cache              = (*NATSCache)(nil)
	_ TTLReporter        = (*NATSCache)(nil)
	_ health.PingChecker = (*NATSCache)(nil)
)

package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// DefaultL1TTL bounds how long an L2 hit is copied into L1.
const DefaultL1TTL = time.Minute

// TieredCache puts a local L1 (usually a MemoryCache) in front of a shared
// L2 (usually a remote backend).
//
// Get checks L1, then L2. An L2 hit is copied into L1 for the shorter of
// l1TTL and the entry's remaining lifetime, which L2 must report through
// TTLReporter; otherwise L1 is not backfilled.
// Set, Delete and Clear go to both levels; L1 failures never stop the L2
// write. Exists checks L1 then L2.
//
// L1 copies may outlive a Delete issued by another process against L2 for
// up to l1TTL. That staleness is accepted as the cache is advisory.
type TieredCache struct {
	l1    Cache
	l2    Cache
	l1TTL time.Duration
}

// NewTieredCache combines l1 and l2. A non-positive l1TTL uses DefaultL1TTL.
func NewTieredCache(l1, l2 Cache, l1TTL time.Duration) *TieredCache {
	if l1TTL <= 0 {
		l1TTL = DefaultL1TTL
	}
	return &TieredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

// Get checks L1, then L2. On an L2 hit, backfills L1.
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, ok := c.l1.Get(ctx, key); ok {
		return val, true
	}

	val, ok := c.l2.Get(ctx, key)
	if !ok {
		return nil, false
	}
	if ttl, ok := c.backfillTTL(ctx, key); ok {
		_ = c.l1.Set(ctx, key, val, ttl)
	}
	return val, true
}

// backfillTTL bounds an L1 copy by what the L2 entry has left.
func (c *TieredCache) backfillTTL(ctx context.Context, key string) (time.Duration, bool) {
	reporter, ok := c.l2.(TTLReporter)
	if !ok {
		return 0, false
	}
	remaining, ok := reporter.TTL(ctx, key)
	if !ok || remaining <= 0 {
		return 0, false
	}
	return min(remaining, c.l1TTL), true
}

// Set writes to both levels. L1 keeps the value no longer than l1TTL.
func (c *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	l1TTL := c.l1TTL
	if ttl > 0 && ttl < l1TTL {
		l1TTL = ttl
	}
	return errors.Join(
		c.l1.Set(ctx, key, value, l1TTL),
		c.l2.Set(ctx, key, value, ttl),
	)
}

// Delete removes from both levels.
func (c *TieredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.l1.Delete(ctx, key), c.l2.Delete(ctx, key))
}

// Clear empties both levels. See the L2 backend for its Clear hazard.
func (c *TieredCache) Clear(ctx context.Context) error {
	return errors.Join(c.l1.Clear(ctx), c.l2.Clear(ctx))
}

// Exists checks L1, then L2.
func (c *TieredCache) Exists(ctx context.Context, key string) bool {
	return c.l1.Exists(ctx, key) || c.l2.Exists(ctx, key)
}

// Levels returns the L1 and L2 caches.
func (c *TieredCache) Levels() (l1, l2 Cache) {
	return c.l1, c.l2
}

// Close closes each level that implements io.Closer.
func (c *TieredCache) Close() error {
	return errors.Join(closeCache(c.l1), closeCache(c.l2))
}

func closeCache(c Cache) error {
	if closer, ok := c.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

var _ Cache = (*TieredCache)(nil)

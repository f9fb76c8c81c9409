package cache

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc computes the value for a key on a miss. It runs on the caller's
// side of the cache: backends never fetch on their own.
type LoadFunc func(ctx context.Context) ([]byte, error)

// Memoizer is a read-through helper over any Cache.
//
// On a miss it runs the loader once per key even under concurrent demand,
// stores the result with the policy TTL, and hands every waiting caller its
// own copy. Loader errors are returned and never cached. Because the cache
// is advisory, a failed Set still returns the loaded value.
//
// Concurrent callers for the same key share the first caller's context for
// the load; if it is cancelled, they all observe the cancellation.
type Memoizer struct {
	cache  Cache
	policy Policy
	group  singleflight.Group
}

// NewMemoizer creates a memoizer over c.
func NewMemoizer(c Cache, policy Policy) *Memoizer {
	return &Memoizer{cache: c, policy: policy}
}

// Do returns the cached value for key or loads, stores and returns it.
// ttl <= 0 selects the policy default. Invalid keys bypass the cache.
func (m *Memoizer) Do(ctx context.Context, key string, ttl time.Duration, load LoadFunc) ([]byte, error) {
	if ValidateKey(key) != nil {
		return load(ctx)
	}

	if cached, ok := m.cache.Get(ctx, key); ok {
		return cached, nil
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		// A flight that finished just before this one may have filled it.
		if cached, ok := m.cache.Get(ctx, key); ok {
			return cached, nil
		}

		result, err := load(ctx)
		if err != nil {
			return nil, err
		}
		_ = m.cache.Set(ctx, key, result, m.policy.EffectiveTTL(ttl))
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneBytes(v.([]byte)), nil
}

// Forget drops an in-flight load for key so the next caller starts afresh.
func (m *Memoizer) Forget(key string) {
	m.group.Forget(key)
}

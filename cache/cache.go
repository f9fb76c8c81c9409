package cache

import (
	"context"
	"math"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Cache is the capability every backend implements. Callers hold this
// interface and never a concrete backend type.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use without
//     caller-side coordination.
//   - Advisory: the cache is never authoritative. A miss or a lost write is
//     not a correctness failure.
//   - Get/Exists: never error. Backend failures degrade to a miss / false.
//     An expired entry is always reported absent.
//   - Set/Delete/Clear: the returned error is informational only. Callers are
//     not required to inspect it and the cache remains usable either way.
//   - TTL: ttl <= 0 means the entry never expires.
//   - Latency: no operation applies its own timeout. Callers that need
//     bounded latency wrap calls in a context deadline.
type Cache interface {
	// Get returns the live value for key. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set inserts or replaces the value for key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry the backend can reach.
	Clear(ctx context.Context) error

	// Exists reports whether key currently holds a live value.
	Exists(ctx context.Context, key string) bool
}

// NoExpiry is the remaining lifetime TTLReporter reports for an entry that
// never expires.
const NoExpiry = time.Duration(math.MaxInt64)

// TTLReporter is implemented by backends that can tell how long a live
// entry has left. TieredCache uses it to keep L1 copies from outliving the
// L2 entry.
type TTLReporter interface {
	// TTL returns the remaining lifetime of key, or NoExpiry. ok is false
	// when the key is missing, expired or the backend cannot tell.
	TTL(ctx context.Context, key string) (remaining time.Duration, ok bool)
}

// Entry is a stored value and its expiry. A zero ExpiresAt never expires.
type Entry struct {
	Value     []byte
	ExpiresAt time.Time
}

// NewEntry builds an Entry that owns a copy of value.
func NewEntry(value []byte, ttl time.Duration, now time.Time) Entry {
	e := Entry{Value: cloneBytes(value)}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl)
	}
	return e
}

// Expired reports whether the entry is no longer live at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !e.ExpiresAt.After(now)
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}

// Family returns the namespace prefix of key, the text before the first
// colon. Keys without a colon have no family.
func Family(key string) string {
	prefix, _, ok := strings.Cut(key, ":")
	if !ok {
		return ""
	}
	return prefix
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/doccache/health"
)

// DefaultMemoryCapacity is the entry bound used when configuration is silent.
const DefaultMemoryCapacity = 1000

// MemoryCache is a bounded in-process cache with LRU eviction and lazy TTL
// expiry.
//
// The map and the recency list are guarded by one mutex and are never
// observed out of step: every key in the map has exactly one list element
// and vice versa. The list front is the most recently used key.
//
// Expired entries are reaped when observed by Get or Exists, and swept in
// bulk right before an insertion that would otherwise evict a live entry.
// There is no background goroutine.
type MemoryCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lru      *list.List

	now func() time.Time
}

type memoryItem struct {
	key   string
	entry Entry
}

// NewMemoryCache creates a memory cache bounded to capacity entries.
// A capacity below 1 is normalised to 1.
func NewMemoryCache(capacity int) *MemoryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
		now:      time.Now,
	}
}

// Get returns a copy of the live value for key and marks it most recently
// used. An expired entry is removed and reported as a miss.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, false
	}

	item := el.Value.(*memoryItem)
	if item.entry.Expired(c.now()) {
		c.removeLocked(el)
		return nil, false
	}

	c.lru.MoveToFront(el)
	return cloneBytes(item.entry.Value), true
}

// Set stores a copy of value. Replacing an existing key refreshes its
// recency and never evicts. Always returns nil.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := NewEntry(value, ttl, now)

	if el, ok := c.items[key]; ok {
		el.Value.(*memoryItem).entry = entry
		c.lru.MoveToFront(el)
		return nil
	}

	if len(c.items) >= c.capacity {
		c.sweepExpiredLocked(now)
	}
	for len(c.items) >= c.capacity {
		c.removeLocked(c.lru.Back())
	}

	c.items[key] = c.lru.PushFront(&memoryItem{key: key, entry: entry})
	return nil
}

// Delete removes key if present. Always returns nil.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeLocked(el)
	}
	return nil
}

// Clear removes every entry. Always returns nil.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.capacity)
	c.lru.Init()
	return nil
}

// Exists reports whether key holds a live value without touching its
// recency. An expired entry is removed.
func (c *MemoryCache) Exists(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	if el.Value.(*memoryItem).entry.Expired(c.now()) {
		c.removeLocked(el)
		return false
	}
	return true
}

// TTL reports the remaining lifetime of key without touching its recency.
// An expired entry is removed.
func (c *MemoryCache) TTL(_ context.Context, key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return 0, false
	}
	now := c.now()
	entry := el.Value.(*memoryItem).entry
	if entry.Expired(now) {
		c.removeLocked(el)
		return 0, false
	}
	if entry.ExpiresAt.IsZero() {
		return NoExpiry, true
	}
	return entry.ExpiresAt.Sub(now), true
}

// Len returns the number of stored entries, including expired entries that
// have not been observed yet.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the entry bound.
func (c *MemoryCache) Capacity() int {
	return c.capacity
}

// Keys returns the stored keys from most to least recently used.
func (c *MemoryCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.lru.Len())
	for el := c.lru.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*memoryItem).key)
	}
	return keys
}

// Checker returns a health checker reporting how full the cache is.
func (c *MemoryCache) Checker(config health.CapacityCheckerConfig) *health.CapacityChecker {
	return health.NewCapacityChecker("cache.memory", func() (int, int) {
		return c.Len(), c.capacity
	}, config)
}

func (c *MemoryCache) removeLocked(el *list.Element) {
	item := el.Value.(*memoryItem)
	delete(c.items, item.key)
	c.lru.Remove(el)
}

// sweepExpiredLocked walks the list once and drops every expired entry.
func (c *MemoryCache) sweepExpiredLocked(now time.Time) {
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memoryItem).entry.Expired(now) {
			c.removeLocked(el)
		}
		el = prev
	}
}

var (
	_ Cache       = (*MemoryCache)(nil)
	_ TTLReporter = (*MemoryCache)(nil)
)

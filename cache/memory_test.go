package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/doccache/health"
)

func TestMemoryCache_Contract(t *testing.T) {
	runCacheContract(t, func(*testing.T) Cache { return NewMemoryCache(100) })
}

// fakeClock drives MemoryCache and NATSCache expiry in tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newClockedMemoryCache(capacity int) (*MemoryCache, *fakeClock) {
	clock := newFakeClock()
	c := NewMemoryCache(capacity)
	c.now = clock.Now
	return c, clock
}

func TestNewMemoryCache_Capacity(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{1000, 1000},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			if got := NewMemoryCache(tt.in).Capacity(); got != tt.want {
				t.Errorf("Capacity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMemoryCache_CapacityZeroHoldsOne(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if c.Exists(ctx, "a") {
		t.Error("a survived, want evicted")
	}
	if v, ok := c.Get(ctx, "b"); !ok || string(v) != "2" {
		t.Errorf("Get(b) = (%q, %v), want (2, true)", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if !c.Exists(ctx, "a") {
		t.Error("a evicted, want kept (recently read)")
	}
	if c.Exists(ctx, "b") {
		t.Error("b kept, want evicted (least recently used)")
	}
	if !c.Exists(ctx, "c") {
		t.Error("c missing, want stored")
	}
}

func TestMemoryCache_OverwriteRefreshesRecency(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Set(ctx, "a", []byte("1'"), 0)
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if got, want := c.Keys(), []string{"c", "a"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestMemoryCache_OverwriteAtCapacityDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Set(ctx, "b", []byte("2'"), 0)

	if c.Len() != 2 || !c.Exists(ctx, "a") {
		t.Errorf("Keys() = %v, want both a and b", c.Keys())
	}
}

func TestMemoryCache_ExistsDoesNotTouchRecency(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	_ = c.Exists(ctx, "a")
	_ = c.Set(ctx, "c", []byte("3"), 0)

	if c.Exists(ctx, "a") {
		t.Error("a kept, want evicted: Exists must not refresh recency")
	}
}

func TestMemoryCache_NeverExceedsCapacity(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	for i := range 100 {
		_ = c.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0)
		if c.Len() > 10 {
			t.Fatalf("Len() = %d after %d inserts, want <= 10", c.Len(), i+1)
		}
	}
	for i := 90; i < 100; i++ {
		if !c.Exists(ctx, fmt.Sprintf("k%d", i)) {
			t.Errorf("k%d missing, want the 10 newest keys kept", i)
		}
	}
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedMemoryCache(10)

	_ = c.Set(ctx, "short", []byte("v"), 100*time.Millisecond)
	_ = c.Set(ctx, "forever", []byte("v"), 0)
	_ = c.Set(ctx, "negative", []byte("v"), -time.Second)

	if !c.Exists(ctx, "short") {
		t.Fatal("short missing before expiry")
	}

	clock.Advance(150 * time.Millisecond)

	if _, ok := c.Get(ctx, "short"); ok {
		t.Error("Get(short) hit after expiry")
	}
	if c.Exists(ctx, "short") {
		t.Error("Exists(short) = true after expiry")
	}
	for _, k := range []string{"forever", "negative"} {
		if !c.Exists(ctx, k) {
			t.Errorf("Exists(%q) = false, want never expires", k)
		}
	}
}

func TestMemoryCache_TTLRealClock(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)

	_ = c.Set(ctx, "k", []byte("v"), 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)

	if _, ok := c.Get(ctx, "k"); ok {
		t.Error("Get() hit after 150ms, want expired")
	}
}

func TestMemoryCache_ExpiredReapedOnRead(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedMemoryCache(10)

	_ = c.Set(ctx, "a", []byte("v"), time.Second)
	clock.Advance(2 * time.Second)

	if c.Len() != 1 {
		t.Fatalf("Len() = %d before read, want 1", c.Len())
	}
	_, _ = c.Get(ctx, "a")
	if c.Len() != 0 {
		t.Errorf("Len() = %d after read, want 0", c.Len())
	}
}

func TestMemoryCache_SweepsExpiredBeforeEvicting(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedMemoryCache(3)

	_ = c.Set(ctx, "live-old", []byte("v"), 0)
	_ = c.Set(ctx, "dead", []byte("v"), time.Second)
	_ = c.Set(ctx, "live-new", []byte("v"), 0)
	clock.Advance(2 * time.Second)

	_ = c.Set(ctx, "incoming", []byte("v"), 0)

	if !c.Exists(ctx, "live-old") {
		t.Error("live-old evicted, want the expired entry dropped instead")
	}
	if got, want := c.Keys(), []string{"incoming", "live-new", "live-old"}; !slices.Equal(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestMemoryCache_ClearKeepsCapacity(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Clear(ctx)
	if c.Len() != 0 || len(c.Keys()) != 0 {
		t.Fatalf("Len() = %d, Keys() = %v after Clear", c.Len(), c.Keys())
	}

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestMemoryCache_ConcurrentEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(16)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := fmt.Sprintf("g%d-%d", g, i%32)
				_ = c.Set(ctx, key, []byte(key), time.Minute)
				_, _ = c.Get(ctx, key)
				if i%10 == 0 {
					_ = c.Delete(ctx, key)
				}
			}
		}()
	}
	wg.Wait()

	if c.Len() > 16 {
		t.Errorf("Len() = %d, want <= 16", c.Len())
	}
	if len(c.Keys()) != c.Len() {
		t.Errorf("len(Keys()) = %d, Len() = %d, want equal", len(c.Keys()), c.Len())
	}
}

func TestMemoryCache_Checker(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4)
	checker := c.Checker(health.CapacityCheckerConfig{WarningThreshold: 0.75})

	if checker.Name() != "cache.memory" {
		t.Errorf("Name() = %q", checker.Name())
	}
	if got := checker.Check(ctx).Status; got != health.StatusHealthy {
		t.Errorf("empty cache status = %v, want healthy", got)
	}

	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if got := checker.Check(ctx).Status; got != health.StatusDegraded {
		t.Errorf("75%% full status = %v, want degraded", got)
	}
}

func TestMemoryCache_FullCacheIsHealthyByDefault(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(4)
	checker := c.Checker(health.CapacityCheckerConfig{})

	for _, k := range []string{"a", "b", "c", "d", "e"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if r := checker.Check(ctx); r.Status != health.StatusHealthy {
		t.Errorf("full cache status = %v (%s), want healthy", r.Status, r.Message)
	}
}

func TestMemoryCache_ReportsTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedMemoryCache(10)

	_ = c.Set(ctx, "short", []byte("v"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("v"), 0)
	clock.Advance(15 * time.Second)

	if d, ok := c.TTL(ctx, "short"); !ok || d != 45*time.Second {
		t.Errorf("TTL(short) = %s, %v, want 45s", d, ok)
	}
	if d, ok := c.TTL(ctx, "forever"); !ok || d != NoExpiry {
		t.Errorf("TTL(forever) = %s, %v, want NoExpiry", d, ok)
	}
	if keys := c.Keys(); keys[0] != "forever" {
		t.Errorf("Keys() = %v, TTL must not reorder", keys)
	}

	clock.Advance(time.Minute)
	if _, ok := c.TTL(ctx, "short"); ok {
		t.Error("TTL(short) ok after expiry")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want expired entry removed", c.Len())
	}
}

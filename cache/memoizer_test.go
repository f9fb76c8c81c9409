package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoizer_LoadsOnceThenHits(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	m := NewMemoizer(c, DefaultPolicy())

	var calls int
	load := func(context.Context) ([]byte, error) {
		calls++
		return []byte("docs"), nil
	}

	for range 3 {
		v, err := m.Do(ctx, "crate:serde", 0, load)
		if err != nil || string(v) != "docs" {
			t.Fatalf("Do() = (%q, %v)", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}
}

func TestMemoizer_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	m := NewMemoizer(c, DefaultPolicy())
	errUpstream := errors.New("upstream 503")

	_, err := m.Do(ctx, "k", 0, func(context.Context) ([]byte, error) {
		return nil, errUpstream
	})
	if !errors.Is(err, errUpstream) {
		t.Fatalf("Do() error = %v, want %v", err, errUpstream)
	}
	if c.Exists(ctx, "k") {
		t.Error("failed load was cached")
	}

	v, err := m.Do(ctx, "k", 0, func(context.Context) ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil || string(v) != "ok" {
		t.Errorf("retry Do() = (%q, %v)", v, err)
	}
}

func TestMemoizer_CollapsesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	m := NewMemoizer(NewMemoryCache(10), DefaultPolicy())

	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("v"), nil
	}

	var wg sync.WaitGroup
	results := make([][]byte, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = m.Do(ctx, "hot", 0, load)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Errorf("loader calls = %d, want 1", n)
	}
	results[0][0] = 'X'
	if string(results[1]) != "v" {
		t.Errorf("callers share a buffer: results[1] = %q", results[1])
	}
}

func TestMemoizer_UsesPolicyTTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newClockedMemoryCache(10)
	m := NewMemoizer(c, Policy{DefaultTTL: time.Minute})

	_, _ = m.Do(ctx, "default", 0, func(context.Context) ([]byte, error) { return []byte("v"), nil })
	_, _ = m.Do(ctx, "explicit", time.Hour, func(context.Context) ([]byte, error) { return []byte("v"), nil })
	clock.Advance(2 * time.Minute)

	if c.Exists(ctx, "default") {
		t.Error("default ttl not applied")
	}
	if !c.Exists(ctx, "explicit") {
		t.Error("explicit ttl not honoured")
	}
}

func TestMemoizer_InvalidKeyBypassesCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10)
	m := NewMemoizer(c, DefaultPolicy())

	var calls int
	key := strings.Repeat("x", MaxKeyLength+1)
	for range 2 {
		_, _ = m.Do(ctx, key, 0, func(context.Context) ([]byte, error) {
			calls++
			return []byte("v"), nil
		})
	}
	if calls != 2 || c.Len() != 0 {
		t.Errorf("calls = %d, Len() = %d, want 2 and 0", calls, c.Len())
	}
}

func TestMemoizer_FailingCacheStillReturnsValue(t *testing.T) {
	m := NewMemoizer(failingCache{err: errors.New("down")}, DefaultPolicy())

	v, err := m.Do(context.Background(), "k", 0, func(context.Context) ([]byte, error) {
		return []byte("fresh"), nil
	})
	if err != nil || string(v) != "fresh" {
		t.Errorf("Do() = (%q, %v), want fresh value despite cache failure", v, err)
	}
}

package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkMemoryCache_GetHit(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(DefaultMemoryCapacity)
	_ = c.Set(ctx, "crate:serde", []byte("docs"), time.Hour)

	for b.Loop() {
		_, _ = c.Get(ctx, "crate:serde")
	}
}

func BenchmarkMemoryCache_GetMiss(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(DefaultMemoryCapacity)

	for b.Loop() {
		_, _ = c.Get(ctx, "crate:missing")
	}
}

func BenchmarkMemoryCache_SetEvicting(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(DefaultMemoryCapacity)
	keys := make([]string, 4*DefaultMemoryCapacity)
	for i := range keys {
		keys[i] = fmt.Sprintf("crate:%d", i)
	}
	value := []byte("docs")

	i := 0
	for b.Loop() {
		_ = c.Set(ctx, keys[i%len(keys)], value, time.Hour)
		i++
	}
}

func BenchmarkMemoryCache_Parallel(b *testing.B) {
	ctx := context.Background()
	c := NewMemoryCache(DefaultMemoryCapacity)
	value := []byte("docs")

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("crate:%d", i%512)
			if i%4 == 0 {
				_ = c.Set(ctx, key, value, time.Hour)
			} else {
				_, _ = c.Get(ctx, key)
			}
			i++
		}
	})
}

func BenchmarkMemoizer_Hit(b *testing.B) {
	ctx := context.Background()
	m := NewMemoizer(NewMemoryCache(DefaultMemoryCapacity), DefaultPolicy())
	load := func(context.Context) ([]byte, error) { return []byte("docs"), nil }
	_, _ = m.Do(ctx, "crate:serde", 0, load)

	for b.Loop() {
		_, _ = m.Do(ctx, "crate:serde", 0, load)
	}
}

// Package cache provides a byte-oriented key/value cache with per-entry
// expiry and interchangeable backends.
//
// Every backend implements Cache. The cache is advisory: lookups degrade to
// misses when a backend misbehaves and writes report failures only for
// logging. Callers can always fall back to computing the value.
//
// Backends:
//
//   - MemoryCache: bounded, in-process, strict LRU eviction with lazy expiry.
//   - RedisCache: GET/SET/DEL/FLUSHDB/EXISTS against a Redis server.
//   - NATSCache: a NATS JetStream KeyValue bucket with per-key expiry.
//   - TieredCache: a memory L1 in front of a remote L2.
//
// Build one from configuration with New (memory only, never blocks) or Open
// (any backend, dials and pings remote stores):
//
//	c, err := cache.Open(ctx, cache.Config{
//	    Backend:        cache.BackendRemote,
//	    RemoteEndpoint: "redis://localhost:6379/0",
//	})
//
// Memoizer adds read-through loading with per-key deduplication, and
// ObservedCache adds spans, metrics and logs around any backend.
package cache

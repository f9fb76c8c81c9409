package cache

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Backend selects a cache implementation.
type Backend string

const (
	// BackendMemory is the bounded in-process MemoryCache.
	BackendMemory Backend = "memory"
	// BackendRemote is a remote store chosen by endpoint scheme.
	BackendRemote Backend = "remote"
	// BackendTiered is a MemoryCache L1 in front of a remote L2.
	BackendTiered Backend = "tiered"
)

// Config selects and sizes a backend.
type Config struct {
	// Backend is memory, remote or tiered. Empty means memory.
	Backend Backend

	// MemoryCapacity bounds the memory backend (and the tiered L1).
	// Zero means DefaultMemoryCapacity.
	MemoryCapacity int

	// RemoteEndpoint is a connection URL, required for remote and tiered:
	// redis://, rediss://, unix:// or nats://host:port/bucket.
	RemoteEndpoint string

	// DefaultTTL is the TTL callers use when they have no per-call TTL.
	DefaultTTL time.Duration

	// L1TTL bounds tiered L1 copies. Zero means DefaultL1TTL.
	L1TTL time.Duration
}

// DefaultConfig returns a memory backend with 1000 entries and a one hour
// default TTL.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendMemory,
		MemoryCapacity: DefaultMemoryCapacity,
		DefaultTTL:     time.Hour,
		L1TTL:          DefaultL1TTL,
	}
}

// Validate checks the configuration without touching the network.
func (c Config) Validate() error {
	switch c.backend() {
	case BackendMemory:
	case BackendRemote, BackendTiered:
		if c.RemoteEndpoint == "" {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrMissingEndpoint)
		}
		if _, err := remoteKind(c.RemoteEndpoint); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnsupportedBackend, c.Backend)
	}

	if c.MemoryCapacity < 0 {
		return fmt.Errorf("%w: memory capacity must not be negative, got %d", ErrInvalidConfig, c.MemoryCapacity)
	}
	if c.DefaultTTL < 0 {
		return fmt.Errorf("%w: default ttl must not be negative, got %s", ErrInvalidConfig, c.DefaultTTL)
	}
	return nil
}

// Policy returns the TTL policy implied by DefaultTTL.
func (c Config) Policy() Policy {
	return Policy{DefaultTTL: c.DefaultTTL}
}

func (c Config) backend() Backend {
	if c.Backend == "" {
		return BackendMemory
	}
	return c.Backend
}

func (c Config) capacity() int {
	if c.MemoryCapacity == 0 {
		return DefaultMemoryCapacity
	}
	return c.MemoryCapacity
}

// New builds a backend synchronously. Only the memory backend can be built
// this way; remote and tiered requests fail with ErrRemoteRequiresOpen
// rather than returning an unusable cache.
func New(cfg Config) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.backend() != BackendMemory {
		return nil, fmt.Errorf("%w: backend %q", ErrRemoteRequiresOpen, cfg.backend())
	}
	return NewMemoryCache(cfg.capacity()), nil
}

// Open builds any backend. Memory returns immediately; remote and tiered
// dial the endpoint and ping it before returning.
func Open(ctx context.Context, cfg Config, opts ...RemoteOption) (Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.backend() {
	case BackendRemote:
		return openRemote(ctx, cfg.RemoteEndpoint, opts)
	case BackendTiered:
		l2, err := openRemote(ctx, cfg.RemoteEndpoint, opts)
		if err != nil {
			return nil, err
		}
		return NewTieredCache(NewMemoryCache(cfg.capacity()), l2, cfg.L1TTL), nil
	default:
		return NewMemoryCache(cfg.capacity()), nil
	}
}

type remoteBackend int

const (
	remoteRedis remoteBackend = iota
	remoteNATS
)

func remoteKind(endpoint string) (remoteBackend, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, fmt.Errorf("%w: parse endpoint: %w", ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "redis", "rediss", "unix":
		return remoteRedis, nil
	case "nats", "tls":
		return remoteNATS, nil
	default:
		return 0, fmt.Errorf("%w: %w: %q", ErrInvalidConfig, ErrUnsupportedScheme, u.Scheme)
	}
}

func openRemote(ctx context.Context, endpoint string, opts []RemoteOption) (Cache, error) {
	kind, err := remoteKind(endpoint)
	if err != nil {
		return nil, err
	}
	if kind == remoteNATS {
		c, err := NewNATSCache(ctx, endpoint, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := NewRedisCache(ctx, endpoint, opts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"defaults", DefaultConfig(), nil},
		{"zero value is memory", Config{}, nil},
		{"remote redis", Config{Backend: BackendRemote, RemoteEndpoint: "redis://localhost:6379/0"}, nil},
		{"remote rediss", Config{Backend: BackendRemote, RemoteEndpoint: "rediss://cache:6380"}, nil},
		{"remote unix", Config{Backend: BackendRemote, RemoteEndpoint: "unix:///tmp/redis.sock"}, nil},
		{"tiered nats", Config{Backend: BackendTiered, RemoteEndpoint: "nats://localhost:4222/docs"}, nil},
		{"remote without endpoint", Config{Backend: BackendRemote}, ErrMissingEndpoint},
		{"tiered without endpoint", Config{Backend: BackendTiered}, ErrMissingEndpoint},
		{"unknown scheme", Config{Backend: BackendRemote, RemoteEndpoint: "memcached://x"}, ErrUnsupportedScheme},
		{"unknown backend", Config{Backend: "disk"}, ErrUnsupportedBackend},
		{"negative capacity", Config{MemoryCapacity: -1}, ErrInvalidConfig},
		{"negative ttl", Config{DefaultTTL: -time.Second}, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want it to wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Backend != BackendMemory || cfg.MemoryCapacity != 1000 || cfg.DefaultTTL != time.Hour {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
	if p := cfg.Policy(); p.DefaultTTL != time.Hour {
		t.Errorf("Policy().DefaultTTL = %v, want 1h", p.DefaultTTL)
	}
}

func TestNew(t *testing.T) {
	c, err := New(Config{Backend: BackendMemory, MemoryCapacity: 5})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mem, ok := c.(*MemoryCache)
	if !ok || mem.Capacity() != 5 {
		t.Errorf("New() = %T, want *MemoryCache of capacity 5", c)
	}

	c, err = New(Config{})
	if err != nil || c.(*MemoryCache).Capacity() != DefaultMemoryCapacity {
		t.Errorf("New(zero) = %v, %v, want default capacity", c, err)
	}
}

func TestNew_RemoteRequiresOpen(t *testing.T) {
	for _, b := range []Backend{BackendRemote, BackendTiered} {
		c, err := New(Config{Backend: b, RemoteEndpoint: "redis://localhost:6379"})
		if c != nil || !errors.Is(err, ErrRemoteRequiresOpen) {
			t.Errorf("New(%s) = (%v, %v), want ErrRemoteRequiresOpen", b, c, err)
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Backend: "disk"}); !errors.Is(err, ErrUnsupportedBackend) {
		t.Errorf("New() error = %v, want ErrUnsupportedBackend", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s := miniredis.RunT(t)

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"memory", Config{}, "memory"},
		{"remote", Config{Backend: BackendRemote, RemoteEndpoint: "redis://" + s.Addr()}, "redis"},
		{"tiered", Config{Backend: BackendTiered, RemoteEndpoint: "redis://" + s.Addr()}, "tiered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			t.Cleanup(func() { _ = closeCache(c) })
			if got := BackendName(c); got != tt.want {
				t.Errorf("BackendName() = %q, want %q", got, tt.want)
			}
			_ = c.Set(ctx, "crate:serde", []byte("docs"), 0)
			if v, ok := c.Get(ctx, "crate:serde"); !ok || string(v) != "docs" {
				t.Errorf("Get() = (%q, %v)", v, ok)
			}
		})
	}
}

func TestOpen_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	_, err := Open(context.Background(), Config{Backend: BackendRemote, RemoteEndpoint: "redis://" + addr})
	if !errors.Is(err, ErrBackendConstruction) {
		t.Errorf("Open() error = %v, want ErrBackendConstruction", err)
	}
}

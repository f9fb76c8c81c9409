// Package config loads doccache settings from YAML and the environment.
package config

import (
	"time"

	"github.com/jonwraymond/doccache/cache"
	"github.com/jonwraymond/doccache/observe"
)

// Config is the root configuration document.
type Config struct {
	Cache   Cache   `yaml:"cache"`
	Observe Observe `yaml:"observe"`
	Logging Logging `yaml:"logging"`
}

// Cache selects and sizes the cache backend.
type Cache struct {
	Backend        string        `yaml:"backend"`
	MemoryCapacity int           `yaml:"memory_capacity"`
	RemoteEndpoint string        `yaml:"remote_endpoint"`
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	L1TTL          time.Duration `yaml:"l1_ttl"`
}

// Observe configures telemetry export.
type Observe struct {
	ServiceName     string  `yaml:"service_name"`
	Version         string  `yaml:"version"`
	TracingExporter string  `yaml:"tracing_exporter"`
	SamplePct       float64 `yaml:"sample_pct"`
	MetricsExporter string  `yaml:"metrics_exporter"`
}

// Logging configures the JSON logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Defaults returns a configuration for an in-process memory cache with
// telemetry off and info logging.
func Defaults() Config {
	def := cache.DefaultConfig()
	return Config{
		Cache: Cache{
			Backend:        string(def.Backend),
			MemoryCapacity: def.MemoryCapacity,
			DefaultTTL:     def.DefaultTTL,
			L1TTL:          def.L1TTL,
		},
		Observe: Observe{
			ServiceName: "doccache",
			SamplePct:   1.0,
		},
		Logging: Logging{Level: "info"},
	}
}

// CacheConfig converts the cache section for cache.Open.
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		Backend:        cache.Backend(c.Cache.Backend),
		MemoryCapacity: c.Cache.MemoryCapacity,
		RemoteEndpoint: c.Cache.RemoteEndpoint,
		DefaultTTL:     c.Cache.DefaultTTL,
		L1TTL:          c.Cache.L1TTL,
	}
}

// ObserveConfig converts the telemetry sections for observe.NewObserver.
// An exporter left empty disables that signal.
func (c *Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.Observe.ServiceName,
		Version:     c.Observe.Version,
		Tracing: observe.TracingConfig{
			Enabled:   c.Observe.TracingExporter != "",
			Exporter:  c.Observe.TracingExporter,
			SamplePct: c.Observe.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Observe.MetricsExporter != "",
			Exporter: c.Observe.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Logging.Level,
		},
	}
}

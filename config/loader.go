package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/doccache/secret"
)

// DefaultConfigFile is the path Load reads.
const DefaultConfigFile = "doccache.yaml"

// Load reads DefaultConfigFile. See LoadFrom.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, DefaultConfigFile, secret.DefaultResolver())
}

// LoadFrom builds a Config from defaults, then the YAML file at path, then
// DOCCACHE_* environment variables. A missing file is not an error. The
// remote endpoint is resolved through resolver before validation; a nil
// resolver only expands ${VAR} references. Only the braced form is
// expanded: a bare $ in the endpoint, as in a password, is kept.
func LoadFrom(ctx context.Context, path string, resolver *secret.Resolver) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, path); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)

	if cfg.Cache.RemoteEndpoint != "" {
		endpoint, err := resolver.Resolve(ctx, cfg.Cache.RemoteEndpoint)
		if err != nil {
			return nil, fmt.Errorf("config remote_endpoint: %w", err)
		}
		cfg.Cache.RemoteEndpoint = endpoint
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}
	return &cfg, nil
}

func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path is chosen by the operator.
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays non-empty environment variables. Unparseable numbers and
// durations are ignored.
func loadEnv(cfg *Config) {
	setString(&cfg.Cache.Backend, "DOCCACHE_CACHE_BACKEND")
	setInt(&cfg.Cache.MemoryCapacity, "DOCCACHE_CACHE_MEMORY_CAPACITY")
	setString(&cfg.Cache.RemoteEndpoint, "DOCCACHE_CACHE_REMOTE_ENDPOINT")
	setDuration(&cfg.Cache.DefaultTTL, "DOCCACHE_CACHE_DEFAULT_TTL")
	setDuration(&cfg.Cache.L1TTL, "DOCCACHE_CACHE_L1_TTL")
	setString(&cfg.Observe.ServiceName, "DOCCACHE_SERVICE_NAME")
	setString(&cfg.Observe.TracingExporter, "DOCCACHE_TRACING_EXPORTER")
	setString(&cfg.Observe.MetricsExporter, "DOCCACHE_METRICS_EXPORTER")
	setString(&cfg.Logging.Level, "DOCCACHE_LOG_LEVEL")
}

func validate(cfg *Config) error {
	if err := cfg.CacheConfig().Validate(); err != nil {
		return err
	}
	obs := cfg.ObserveConfig()
	return obs.Validate()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

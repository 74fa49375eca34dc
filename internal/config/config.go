// Package config provides configuration management for ComplyForge.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lvonguyen/complyforge/internal/analytics"
)

// Config holds all ComplyForge configuration.
type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Redis     RedisConfig       `yaml:"redis"`
	Store     StoreConfig       `yaml:"store"`
	Analytics analytics.Options `yaml:"analytics"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Telemetry TelemetryConfig   `yaml:"telemetry"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// RedisConfig holds Redis connection settings. Redis backs the response
// cache and the rate limiter; an empty addr disables both.
type RedisConfig struct {
	Addr        string        `yaml:"addr"`
	PasswordEnv string        `yaml:"password_env"`
	DB          int           `yaml:"db"`
	PoolSize    int           `yaml:"pool_size"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// StoreConfig holds upstream snapshot-fetch settings.
type StoreConfig struct {
	// BatchSize bounds one identifier batch against the upstream store.
	BatchSize int `yaml:"batch_size"`

	// SeedPath points the dev server at a YAML seed file.
	SeedPath string `yaml:"seed_path"`
}

// RateLimitConfig holds dashboard endpoint rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool          `yaml:"enabled"`
	RequestsPerWindow int           `yaml:"requests_per_window"`
	Window            time.Duration `yaml:"window"`
}

// TelemetryConfig holds logging, metrics, and tracing settings.
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name"`
	ServiceVersion string `yaml:"service_version"`
	Environment    string `yaml:"environment"`

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json, console

	TracingEnabled bool    `yaml:"tracing_enabled"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint"`
	SamplingRate   float64 `yaml:"sampling_rate"`

	MetricsEnabled bool `yaml:"metrics_enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Redis: RedisConfig{
			PasswordEnv: "REDIS_PASSWORD",
			DB:          0,
			PoolSize:    10,
			CacheTTL:    60 * time.Second,
		},
		Store: StoreConfig{
			BatchSize: 800,
		},
		Analytics: analytics.DefaultOptions(),
		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerWindow: 60,
			Window:            time.Minute,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "complyforge",
			ServiceVersion: "dev",
			Environment:    "development",
			LogLevel:       "info",
			LogFormat:      "json",
			SamplingRate:   0.1,
			MetricsEnabled: true,
		},
	}
}

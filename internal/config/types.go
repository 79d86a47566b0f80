// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the complete service configuration.
type AppConfig struct {
	// Version is set from the binary, never from the file.
	Version string `yaml:"-"`

	LogLevel   string `yaml:"logLevel"`
	LogService string `yaml:"logService"`

	API        APIConfig           `yaml:"api"`
	Server     ServerRuntimeConfig `yaml:"server"`
	Metrics    MetricsConfig       `yaml:"metrics"`
	Dictionary DictionaryConfig    `yaml:"dictionary"`
	Cache      CacheConfig         `yaml:"cache"`
	Telemetry  TelemetryConfig     `yaml:"telemetry"`
}

// APIConfig configures the HTTP API.
type APIConfig struct {
	ListenAddr   string          `yaml:"listenAddr"`
	MaxBodyBytes int64           `yaml:"maxBodyBytes"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Batch        BatchConfig     `yaml:"batch"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
}

// BatchConfig bounds batch extraction. Each document costs one token of
// the per-client cost limiter.
type BatchConfig struct {
	MaxDocuments  int     `yaml:"maxDocuments"`
	Concurrency   int     `yaml:"concurrency"`
	CostPerSecond float64 `yaml:"costPerSecond"`
	CostBurst     int     `yaml:"costBurst"`
}

// ServerRuntimeConfig holds HTTP server timeouts.
type ServerRuntimeConfig struct {
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// MetricsConfig configures the Prometheus listener.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listenAddr"`
}

// DictionaryConfig configures user dictionary storage.
type DictionaryConfig struct {
	// Backend is file, sqlite or memory.
	Backend string `yaml:"backend"`
	// Path is the store location for the file and sqlite backends.
	Path string `yaml:"path"`
	// WatchFile is a dictionary file loaded at startup.
	WatchFile string `yaml:"watchFile"`
	// Watch reloads WatchFile whenever it changes.
	Watch bool `yaml:"watch"`
}

// CacheConfig configures the extraction result cache.
type CacheConfig struct {
	// Backend is memory, redis, badger or none.
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Redis   RedisConfig   `yaml:"redis"`
	Badger  BadgerConfig  `yaml:"badger"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// BadgerConfig configures the badger cache backend. An empty path keeps
// the store in memory.
type BadgerConfig struct {
	Path string `yaml:"path"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

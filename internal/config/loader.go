// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/textfeature/internal/log"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
	environ         func() []string
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
		environ:         os.Environ,
	}
}

// Path returns the config file path, which may be empty.
func (l *Loader) Path() string {
	return l.configPath
}

// Load loads configuration with precedence: ENV > File > Defaults.
// The order is: defaults, strict file parse, environment, validation.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnvConfig(&cfg)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields cause an error to prevent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %q (only YAML supported)", ErrUnsupportedFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("strict config parse error: %w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrTrailingContent
	}
	return nil
}

// envBinding maps one environment variable onto the configuration.
type envBinding struct {
	key   string
	apply func(key string, cfg *AppConfig)
}

func stringEnv(field func(*AppConfig) *string) func(string, *AppConfig) {
	return func(key string, cfg *AppConfig) {
		p := field(cfg)
		*p = strings.TrimSpace(ParseString(key, *p))
	}
}

func intEnv(field func(*AppConfig) *int) func(string, *AppConfig) {
	return func(key string, cfg *AppConfig) {
		p := field(cfg)
		*p = ParseInt(key, *p)
	}
}

func boolEnv(field func(*AppConfig) *bool) func(string, *AppConfig) {
	return func(key string, cfg *AppConfig) {
		p := field(cfg)
		*p = ParseBool(key, *p)
	}
}

func floatEnv(field func(*AppConfig) *float64) func(string, *AppConfig) {
	return func(key string, cfg *AppConfig) {
		p := field(cfg)
		*p = ParseFloat(key, *p)
	}
}

var envBindings = []envBinding{
	{"TEXTFEATURE_LOG_LEVEL", stringEnv(func(c *AppConfig) *string { return &c.LogLevel })},
	{"TEXTFEATURE_LOG_SERVICE", stringEnv(func(c *AppConfig) *string { return &c.LogService })},

	{"TEXTFEATURE_LISTEN", stringEnv(func(c *AppConfig) *string { return &c.API.ListenAddr })},
	{"TEXTFEATURE_MAX_BODY_BYTES", func(key string, c *AppConfig) {
		c.API.MaxBodyBytes = ParseInt64(key, c.API.MaxBodyBytes)
	}},
	{"TEXTFEATURE_RATELIMIT_ENABLED", boolEnv(func(c *AppConfig) *bool { return &c.API.RateLimit.Enabled })},
	{"TEXTFEATURE_RATELIMIT_RPM", intEnv(func(c *AppConfig) *int { return &c.API.RateLimit.RequestsPerMinute })},
	{"TEXTFEATURE_BATCH_MAX_DOCUMENTS", intEnv(func(c *AppConfig) *int { return &c.API.Batch.MaxDocuments })},
	{"TEXTFEATURE_BATCH_CONCURRENCY", intEnv(func(c *AppConfig) *int { return &c.API.Batch.Concurrency })},
	{"TEXTFEATURE_BATCH_COST_PER_SECOND", floatEnv(func(c *AppConfig) *float64 { return &c.API.Batch.CostPerSecond })},
	{"TEXTFEATURE_BATCH_COST_BURST", intEnv(func(c *AppConfig) *int { return &c.API.Batch.CostBurst })},

	{"TEXTFEATURE_SERVER_READ_TIMEOUT", func(key string, c *AppConfig) {
		c.Server.ReadTimeout = ParseDuration(key, c.Server.ReadTimeout)
	}},
	{"TEXTFEATURE_SERVER_WRITE_TIMEOUT", func(key string, c *AppConfig) {
		c.Server.WriteTimeout = ParseDuration(key, c.Server.WriteTimeout)
	}},
	{"TEXTFEATURE_SERVER_IDLE_TIMEOUT", func(key string, c *AppConfig) {
		c.Server.IdleTimeout = ParseDuration(key, c.Server.IdleTimeout)
	}},
	{"TEXTFEATURE_SERVER_MAX_HEADER_BYTES", intEnv(func(c *AppConfig) *int { return &c.Server.MaxHeaderBytes })},
	{"TEXTFEATURE_SERVER_SHUTDOWN_TIMEOUT", func(key string, c *AppConfig) {
		c.Server.ShutdownTimeout = ParseDuration(key, c.Server.ShutdownTimeout)
	}},

	{"TEXTFEATURE_METRICS_ENABLED", boolEnv(func(c *AppConfig) *bool { return &c.Metrics.Enabled })},
	{"TEXTFEATURE_METRICS_LISTEN", stringEnv(func(c *AppConfig) *string { return &c.Metrics.ListenAddr })},

	{"TEXTFEATURE_DICT_BACKEND", stringEnv(func(c *AppConfig) *string { return &c.Dictionary.Backend })},
	{"TEXTFEATURE_DICT_PATH", stringEnv(func(c *AppConfig) *string { return &c.Dictionary.Path })},
	{"TEXTFEATURE_DICT_WATCH_FILE", stringEnv(func(c *AppConfig) *string { return &c.Dictionary.WatchFile })},
	{"TEXTFEATURE_DICT_WATCH", boolEnv(func(c *AppConfig) *bool { return &c.Dictionary.Watch })},

	{"TEXTFEATURE_CACHE_BACKEND", stringEnv(func(c *AppConfig) *string { return &c.Cache.Backend })},
	{"TEXTFEATURE_CACHE_TTL", func(key string, c *AppConfig) {
		c.Cache.TTL = ParseDuration(key, c.Cache.TTL)
	}},
	{"TEXTFEATURE_REDIS_ADDR", stringEnv(func(c *AppConfig) *string { return &c.Cache.Redis.Addr })},
	{"TEXTFEATURE_REDIS_PASSWORD", stringEnv(func(c *AppConfig) *string { return &c.Cache.Redis.Password })},
	{"TEXTFEATURE_REDIS_DB", intEnv(func(c *AppConfig) *int { return &c.Cache.Redis.DB })},
	{"TEXTFEATURE_BADGER_PATH", stringEnv(func(c *AppConfig) *string { return &c.Cache.Badger.Path })},

	{"TEXTFEATURE_TELEMETRY_ENABLED", boolEnv(func(c *AppConfig) *bool { return &c.Telemetry.Enabled })},
	{"TEXTFEATURE_OTEL_EXPORTER", stringEnv(func(c *AppConfig) *string { return &c.Telemetry.Exporter })},
	{"TEXTFEATURE_OTEL_ENDPOINT", stringEnv(func(c *AppConfig) *string { return &c.Telemetry.Endpoint })},
	{"TEXTFEATURE_OTEL_SAMPLING_RATE", floatEnv(func(c *AppConfig) *float64 { return &c.Telemetry.SamplingRate })},
}

// KnownEnvKeys lists every environment variable the loader reads.
func KnownEnvKeys() []string {
	keys := make([]string, 0, len(envBindings))
	for _, b := range envBindings {
		keys = append(keys, b.key)
	}
	return keys
}

// mergeEnvConfig applies environment overrides (highest priority).
func (l *Loader) mergeEnvConfig(cfg *AppConfig) {
	for _, b := range envBindings {
		l.ConsumedEnvKeys[b.key] = struct{}{}
		b.apply(b.key, cfg)
	}
}

// ValidateEnvUsage detects unknown TEXTFEATURE_* keys (dead flags or typos).
// In strict mode any unknown key fails fast.
func (l *Loader) ValidateEnvUsage(strict bool) error {
	known := make(map[string]struct{}, len(envBindings))
	for _, key := range KnownEnvKeys() {
		known[key] = struct{}{}
	}

	var unknown []string
	for _, pair := range l.environ() {
		key, _, _ := strings.Cut(pair, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := known[key]; ok {
			continue
		}
		if _, consumed := l.ConsumedEnvKeys[key]; consumed {
			continue
		}
		unknown = append(unknown, key)
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)
	logger := log.WithComponent("config")
	for _, key := range unknown {
		logger.Warn().
			Str("key", key).
			Msg("unknown TEXTFEATURE env key detected (dead flag or typo)")
	}
	if strict {
		return fmt.Errorf("unknown TEXTFEATURE env keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

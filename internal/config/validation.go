// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"

	"github.com/ManuGH/textfeature/internal/validate"
)

// Backend names accepted by the dictionary and cache sections.
var (
	DictionaryBackends = []string{"file", "sqlite", "memory"}
	CacheBackends      = []string{"memory", "redis", "badger", "none"}
	TelemetryExporters = []string{"grpc", "http"}
)

// Validate checks cfg and returns a validate.ValidationError listing every
// problem.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.Custom("logLevel", cfg.LogLevel, func(val any) error {
		if _, err := validate.ParseLogLevel(val.(string)); err != nil {
			return errors.New("must be one of trace, debug, info, warn, error")
		}
		return nil
	})
	v.NotEmpty("logService", cfg.LogService)

	// API
	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr)
	v.Positive("api.maxBodyBytes", cfg.API.MaxBodyBytes)
	if cfg.API.RateLimit.Enabled {
		v.Range("api.rateLimit.requestsPerMinute", cfg.API.RateLimit.RequestsPerMinute, 1, 100000)
	}
	batch := cfg.API.Batch
	v.Range("api.batch.maxDocuments", batch.MaxDocuments, 1, 10000)
	v.Range("api.batch.concurrency", batch.Concurrency, 1, 256)
	if batch.CostPerSecond <= 0 {
		v.AddError("api.batch.costPerSecond", "value must be positive", batch.CostPerSecond)
	}
	if batch.CostBurst < batch.MaxDocuments {
		v.AddError("api.batch.costBurst",
			fmt.Sprintf("must be at least api.batch.maxDocuments (%d)", batch.MaxDocuments),
			batch.CostBurst)
	}

	// Server
	v.NonNegativeDuration("server.readTimeout", cfg.Server.ReadTimeout)
	v.NonNegativeDuration("server.writeTimeout", cfg.Server.WriteTimeout)
	v.NonNegativeDuration("server.idleTimeout", cfg.Server.IdleTimeout)
	v.NonNegativeDuration("server.shutdownTimeout", cfg.Server.ShutdownTimeout)

	// Metrics
	if cfg.Metrics.Enabled {
		v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr)
		if cfg.Metrics.ListenAddr == cfg.API.ListenAddr {
			v.AddError("metrics.listenAddr", "must differ from api.listenAddr", cfg.Metrics.ListenAddr)
		}
	}

	// Dictionary
	v.OneOf("dictionary.backend", cfg.Dictionary.Backend, DictionaryBackends)
	if cfg.Dictionary.Backend == "file" || cfg.Dictionary.Backend == "sqlite" {
		v.FilePath("dictionary.path", cfg.Dictionary.Path)
	}
	if cfg.Dictionary.WatchFile != "" {
		v.FilePath("dictionary.watchFile", cfg.Dictionary.WatchFile)
	} else if cfg.Dictionary.Watch {
		v.AddError("dictionary.watch", "requires dictionary.watchFile", cfg.Dictionary.Watch)
	}

	// Cache
	v.OneOf("cache.backend", cfg.Cache.Backend, CacheBackends)
	v.NonNegativeDuration("cache.ttl", cfg.Cache.TTL)
	if cfg.Cache.Backend == "redis" {
		v.HostPort("cache.redis.addr", cfg.Cache.Redis.Addr)
		v.Range("cache.redis.db", cfg.Cache.Redis.DB, 0, 15)
	}

	// Telemetry
	if cfg.Telemetry.Enabled {
		v.OneOf("telemetry.exporter", cfg.Telemetry.Exporter, TelemetryExporters)
		v.NotEmpty("telemetry.endpoint", cfg.Telemetry.Endpoint)
		v.FloatRange("telemetry.samplingRate", cfg.Telemetry.SamplingRate, 0, 1)
	}

	return v.Err()
}

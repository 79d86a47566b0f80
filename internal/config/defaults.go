// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// Default values applied before the file and the environment.
const (
	DefaultListenAddr        = ":8080"
	DefaultMetricsListenAddr = ":9090"
	DefaultMaxBodyBytes      = 1 << 20
	DefaultRequestsPerMinute = 120
	DefaultBatchDocuments    = 100
	DefaultBatchConcurrency  = 4
	DefaultCostPerSecond     = 50
	DefaultCostBurst         = 200
	DefaultCacheTTL          = 10 * time.Minute
	DefaultRedisAddr         = "localhost:6379"
	DefaultOTLPEndpoint      = "localhost:4317"
)

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:   "info",
		LogService: "textfeature",
		API: APIConfig{
			ListenAddr:   DefaultListenAddr,
			MaxBodyBytes: DefaultMaxBodyBytes,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: DefaultRequestsPerMinute,
			},
			Batch: BatchConfig{
				MaxDocuments:  DefaultBatchDocuments,
				Concurrency:   DefaultBatchConcurrency,
				CostPerSecond: DefaultCostPerSecond,
				CostBurst:     DefaultCostBurst,
			},
		},
		Server: ServerRuntimeConfig{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Metrics: MetricsConfig{
			ListenAddr: DefaultMetricsListenAddr,
		},
		Dictionary: DictionaryConfig{
			Backend: "memory",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     DefaultCacheTTL,
			Redis:   RedisConfig{Addr: DefaultRedisAddr},
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			Endpoint:     DefaultOTLPEndpoint,
			SamplingRate: 1.0,
		},
	}
}

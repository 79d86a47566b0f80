// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon wires the extraction service into a long-running HTTP
// daemon and manages its lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/textfeature/internal/api"
	"github.com/ManuGH/textfeature/internal/cache"
	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/dictionary"
	"github.com/ManuGH/textfeature/internal/feature"
	"github.com/ManuGH/textfeature/internal/health"
	"github.com/ManuGH/textfeature/internal/keyword"
	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/metrics"
	"github.com/ManuGH/textfeature/internal/telemetry"
)

// RedisKeyPrefix namespaces cached results in a shared Redis.
const RedisKeyPrefix = "textfeature:"

// Runtime is a fully wired daemon.
type Runtime struct {
	Config  config.AppConfig
	Service *feature.Service
	Health  *health.Manager
	Manager Manager
	App     *App
}

// Bootstrap builds every component from the current configuration of
// holder. Resources opened before a failure are released again.
func Bootstrap(ctx context.Context, holder *config.Holder) (_ *Runtime, err error) {
	cfg := holder.Get()
	logger := log.WithComponent("daemon")

	var cleanups []func(context.Context) error
	defer func() {
		if err == nil {
			return
		}
		for i := len(cleanups) - 1; i >= 0; i-- {
			_ = cleanups[i](context.WithoutCancel(ctx))
		}
	}()

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return nil, fmt.Errorf("startup checks: %w", err)
	}

	provider := initTelemetry(ctx, logger, cfg)
	cleanups = append(cleanups, provider.Shutdown)

	store, err := dictionary.NewStore(ctx, cfg.Dictionary.Backend, cfg.Dictionary.Path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary store: %w", err)
	}
	cleanups = append(cleanups, func(context.Context) error { return store.Close() })

	extractor, err := keyword.New(keyword.WithPersister(store))
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}

	resultCache, err := cache.New(ctx, cache.Config{
		Backend: cfg.Cache.Backend,
		Redis: cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   RedisKeyPrefix,
		},
		BadgerPath: cfg.Cache.Badger.Path,
	}, log.WithComponent("cache"))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	cleanups = append(cleanups, func(context.Context) error { return resultCache.Close() })

	svc := feature.NewService(extractor, store, resultCache, feature.Config{
		CacheTTL:          cfg.Cache.TTL,
		BatchConcurrency:  cfg.API.Batch.Concurrency,
		MaxBatchDocuments: cfg.API.Batch.MaxDocuments,
	})

	reloadDictionary := loadDictionary(svc, cfg.Dictionary.WatchFile)
	if err := reloadDictionary(ctx); err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewDictionaryChecker(store))
	hm.RegisterChecker(health.NewCacheChecker(resultCache))
	if cfg.Dictionary.Backend == dictionary.BackendSqlite {
		hm.RegisterChecker(health.NewSqliteChecker(cfg.Dictionary.Path))
	}
	if cfg.Dictionary.WatchFile != "" {
		hm.RegisterChecker(health.NewFileChecker("dictionary_file", cfg.Dictionary.WatchFile))
	}

	apiServer, err := api.New(ctx, api.ConfigFrom(cfg), svc, hm)
	if err != nil {
		return nil, fmt.Errorf("create API server: %w", err)
	}

	mgr, err := NewManager(config.ServerConfigFor(cfg), Deps{
		Logger:         log.WithComponent("daemon"),
		APIHandler:     apiServer.Handler(),
		MetricsHandler: promhttp.Handler(),
		MetricsAddr:    config.MetricsAddr(cfg),
	})
	if err != nil {
		return nil, err
	}
	// LIFO: the cache closes first, telemetry flushes last
	mgr.RegisterShutdownHook("telemetry", provider.Shutdown)
	mgr.RegisterShutdownHook("dictionary_store", func(context.Context) error { return store.Close() })
	mgr.RegisterShutdownHook("cache", func(context.Context) error { return resultCache.Close() })

	app := NewApp(logger, mgr, holder).WithDictionaryReload(reloadDictionary)
	if cfg.Dictionary.Watch && cfg.Dictionary.WatchFile != "" {
		app.WithDictionaryWatcher(dictionary.NewWatcher(cfg.Dictionary.WatchFile, svc.ReloadDictionaryFile))
	}

	metrics.SetDictionaryState(len(svc.Words()), svc.Generation())
	logger.Info().
		Str(log.FieldEvent, "daemon.bootstrapped").
		Str(log.FieldVersion, cfg.Version).
		Str("dictionary_backend", cfg.Dictionary.Backend).
		Str("cache_backend", resultCache.Name()).
		Int(log.FieldEntries, len(svc.Words())).
		Msg("daemon components ready")

	return &Runtime{
		Config:  cfg,
		Service: svc,
		Health:  hm,
		Manager: mgr,
		App:     app,
	}, nil
}

// loadDictionary reloads from the watched file when one is configured and
// from the store otherwise.
func loadDictionary(svc *feature.Service, watchFile string) func(context.Context) error {
	if watchFile != "" {
		return func(ctx context.Context) error {
			return svc.ReloadDictionaryFile(ctx, watchFile)
		}
	}
	return func(ctx context.Context) error {
		err := svc.ReloadDictionary(ctx)
		if errors.Is(err, feature.ErrNoStore) {
			return nil
		}
		return err
	}
}

// initTelemetry installs the tracer provider. Failures fall back to a noop
// provider so the daemon still starts.
func initTelemetry(ctx context.Context, logger zerolog.Logger, cfg config.AppConfig) *telemetry.Provider {
	telCfg := telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.LogService,
		ServiceVersion: cfg.Version,
		Environment:    "production",
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	}
	provider, err := telemetry.NewProvider(ctx, telCfg)
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry initialization failed, continuing without tracing")
		provider, _ = telemetry.NewProvider(ctx, telemetry.Config{})
		return provider
	}
	if telCfg.Enabled {
		logger.Info().
			Str(log.FieldService, telCfg.ServiceName).
			Str("endpoint", telCfg.Endpoint).
			Float64("sampling_rate", telCfg.SamplingRate).
			Msg("telemetry initialized")
	}
	return provider
}

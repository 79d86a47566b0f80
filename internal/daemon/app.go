// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/dictionary"
	"github.com/ManuGH/textfeature/internal/log"
)

// App owns the long-lived runtime lifecycle (watchers, reload wiring) and
// delegates server management to Manager.
type App struct {
	logger           zerolog.Logger
	manager          Manager
	cfgHolder        *config.Holder
	dictWatcher      *dictionary.Watcher
	reloadDictionary func(context.Context) error
	reloadSignal     os.Signal
}

// NewApp creates a new App orchestrator.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.Holder) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		reloadSignal: syscall.SIGHUP,
	}
}

// WithDictionaryWatcher reloads the dictionary file whenever it changes.
func (a *App) WithDictionaryWatcher(w *dictionary.Watcher) *App {
	a.dictWatcher = w
	return a
}

// WithDictionaryReload sets what the reload signal does to the dictionary.
func (a *App) WithDictionaryReload(fn func(context.Context) error) *App {
	a.reloadDictionary = fn
	return a
}

// WithReloadSignal overrides SIGHUP; nil disables signal reloads.
func (a *App) WithReloadSignal(sig os.Signal) *App {
	a.reloadSignal = sig
	return a
}

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfgHolder != nil {
		// watcher failures are not fatal; the reload signal still works
		g.Go(func() error {
			if err := a.cfgHolder.Watch(ctx); err != nil {
				a.logger.Warn().Err(err).Str(log.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
			}
			return nil
		})

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.applyConfig(cfg)
				}
			}
		})
	}

	if a.dictWatcher != nil {
		g.Go(func() error {
			if err := a.dictWatcher.Run(ctx); err != nil {
				a.logger.Warn().Err(err).Str(log.FieldEvent, "dictionary.watcher_start_failed").Msg("failed to start dictionary watcher")
			}
			return nil
		})
	}

	if a.reloadSignal != nil && (a.cfgHolder != nil || a.reloadDictionary != nil) {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(log.FieldEvent, "reload.signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal")
					a.reload(ctx)
				}
			}
		})
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.WithoutCancel(ctx))
		}
		return err
	})

	return g.Wait()
}

// reload re-reads the configuration and the dictionary.
func (a *App) reload(ctx context.Context) {
	if a.cfgHolder != nil {
		if err := a.cfgHolder.Reload(ctx); err != nil {
			a.logger.Warn().Err(err).Str(log.FieldEvent, "config.reload_failed").Msg("config reload failed")
		}
	}
	if a.reloadDictionary != nil {
		if err := a.reloadDictionary(ctx); err != nil {
			a.logger.Warn().Err(err).Str(log.FieldEvent, "dictionary.reload_failed").Msg("dictionary reload failed")
		}
	}
}

// applyConfig applies the hot-reloadable part of a new configuration.
func (a *App) applyConfig(cfg config.AppConfig) {
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		a.logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("log level not applied")
		return
	}
	a.logger.Info().
		Str(log.FieldEvent, "config.applied").
		Str("level", cfg.LogLevel).
		Msg("log level applied")
}

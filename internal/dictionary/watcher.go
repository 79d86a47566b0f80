// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dictionary

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/metrics"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 500 * time.Millisecond

// ReloadFunc loads the dictionary file at path.
type ReloadFunc func(ctx context.Context, path string) error

// Watcher reloads a dictionary file whenever it changes on disk.
type Watcher struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	reloads int
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string, reload ReloadFunc) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		reload:   reload,
		debounce: DefaultDebounce,
		logger:   log.WithComponent("dictionary"),
	}
}

// WithDebounce overrides the debounce interval.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Reloads returns the number of completed reload attempts.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Run watches until ctx is cancelled. The parent directory is watched so
// that atomic replacements of the file are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch dictionary dir: %w", err)
	}

	w.logger.Info().
		Str("event", "dictionary.watcher_started").
		Str(log.FieldPath, w.path).
		Msg("watching dictionary file for changes")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("event", "dictionary.watcher_stopped").Msg("dictionary watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug().
				Str("event", "dictionary.file_changed").
				Str("op", event.Op.String()).
				Msg("dictionary file changed")

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reloadNow(ctx)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().
				Err(err).
				Str("event", "dictionary.watcher_error").
				Msg("dictionary watcher error")
		}
	}
}

func (w *Watcher) reloadNow(ctx context.Context) {
	err := w.reload(ctx, w.path)
	metrics.RecordDictionaryReload("watch", err)

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	if err != nil {
		w.logger.Error().
			Err(err).
			Str("event", "dictionary.auto_reload_failed").
			Str(log.FieldPath, w.path).
			Msg("automatic dictionary reload failed")
		return
	}
	w.logger.Info().
		Str("event", "dictionary.reloaded").
		Str(log.FieldPath, w.path).
		Msg("dictionary reloaded from file")
}

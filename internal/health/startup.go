// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/log"
)

// PerformStartupChecks validates the environment before the server starts.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := ctx.Err(); err != nil {
		return err
	}

	switch cfg.Dictionary.Backend {
	case "file", "sqlite":
		if err := checkWritableDir(logger, filepath.Dir(cfg.Dictionary.Path)); err != nil {
			return fmt.Errorf("dictionary directory check failed: %w", err)
		}
	case "memory":
		logger.Warn().Msg("dictionary uses the memory backend; added words are lost on restart")
	}

	if cfg.Dictionary.WatchFile != "" {
		if err := checkFileReadable(cfg.Dictionary.WatchFile); err != nil {
			return fmt.Errorf("dictionary file check failed: %w", err)
		}
		logger.Info().Str(log.FieldPath, cfg.Dictionary.WatchFile).Msg("dictionary file is readable")
	}

	if cfg.Cache.Backend == "badger" && cfg.Cache.Badger.Path != "" {
		if err := checkWritableDir(logger, cfg.Cache.Badger.Path); err != nil {
			return fmt.Errorf("badger directory check failed: %w", err)
		}
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}

// checkWritableDir creates path if needed and probes it with a temp file.
func checkWritableDir(logger zerolog.Logger, path string) error {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	probe, err := os.CreateTemp(path, ".write_test")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	logger.Info().Str(log.FieldPath, path).Msg("directory is writable")
	return nil
}

func checkFileReadable(path string) error {
	f, err := os.Open(path) // #nosec G304 -- path comes from operator config; verifying readability is expected
	if err != nil {
		return err
	}
	return f.Close()
}

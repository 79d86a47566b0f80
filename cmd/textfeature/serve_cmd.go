// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/daemon"
	"github.com/ManuGH/textfeature/internal/log"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP extraction daemon",
		Long: "Run the HTTP extraction daemon until SIGINT or SIGTERM. SIGHUP reloads " +
			"the configuration and the user dictionary.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			levelOverride := ""
			if cmd.Flags().Changed("log-level") {
				levelOverride = opts.logLevel
			}
			return runServe(cmd.Context(), opts, levelOverride, cmd.ErrOrStderr())
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions, levelOverride string, logOut io.Writer) error {
	loader, cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if levelOverride != "" {
		cfg.LogLevel = levelOverride
	}

	log.Configure(log.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
		Output:  logOut,
	})
	logger := log.WithComponent("cli")

	if err := loader.ValidateEnvUsage(false); err != nil {
		return err
	}

	if opts.configPath != "" {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "file").
			Str(log.FieldPath, opts.configPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	rt, err := daemon.Bootstrap(ctx, config.NewHolder(cfg, loader))
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := rt.App.Run(ctx); err != nil {
		logger.Error().Err(err).Str(log.FieldEvent, "daemon.failed").Msg("daemon stopped with error")
		return err
	}
	logger.Info().Str(log.FieldEvent, "daemon.stopped").Msg("server exited gracefully")
	return nil
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ManuGH/textfeature/internal/config"
	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/version"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "textfeature",
		Short:        "Korean keyword and pattern extraction",
		Version:      version.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log.Configure(log.Config{
				Level:   opts.logLevel,
				Version: version.Version,
				Output:  cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (YAML)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newExtractCmd(),
		newRegexCmd(),
		newTokensCmd(),
		newDictCmd(opts),
		newHealthcheckCmd(),
		newVersionCmd(),
		newConfigCmd(opts),
	)
	return root
}

// loadConfig applies defaults, the optional config file and the environment.
func (o *rootOptions) loadConfig() (*config.Loader, config.AppConfig, error) {
	loader := config.NewLoader(o.configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}
	return loader, cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/textfeature/internal/dictionary"
	"github.com/ManuGH/textfeature/internal/feature"
	"github.com/ManuGH/textfeature/internal/keyword"
	"github.com/ManuGH/textfeature/internal/morph"
)

var errVolatileBackend = errors.New("dict commands need a file or sqlite backend")

type dictOptions struct {
	backend string
	path    string
}

type dictListOutput struct {
	Entries []morph.Entry `json:"entries"`
}

type dictAddOutput struct {
	Added      int    `json:"added"`
	Size       int    `json:"size"`
	Generation uint64 `json:"generation"`
}

func newDictCmd(root *rootOptions) *cobra.Command {
	opts := &dictOptions{}
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage the persistent user dictionary",
	}
	cmd.PersistentFlags().StringVar(&opts.backend, "backend", "", "dictionary backend (file or sqlite); defaults to the config")
	cmd.PersistentFlags().StringVar(&opts.path, "path", "", "dictionary path; defaults to the config")

	cmd.AddCommand(&cobra.Command{
		Use:   "add <word>...",
		Short: "Add words to the user dictionary",
		Long: "Add words to the user dictionary. A word may carry a tag after a tab, " +
			"for example \"삼성\tNNP\". Words without a tag become proper nouns.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDictAdd(cmd, root, opts, args)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the user dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.openStore(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dictListOutput{Entries: nonNil(entries)})
		},
	})
	return cmd
}

func runDictAdd(cmd *cobra.Command, root *rootOptions, opts *dictOptions, words []string) error {
	ctx := cmd.Context()
	store, err := opts.openStore(ctx, root)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	extractor, err := keyword.New(keyword.WithPersister(store))
	if err != nil {
		return err
	}
	svc := feature.NewService(extractor, store, nil, feature.Config{})
	if err := svc.ReloadDictionary(ctx); err != nil {
		return err
	}

	added, err := svc.AddWords(ctx, words)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), dictAddOutput{
		Added:      added,
		Size:       len(svc.Words()),
		Generation: svc.Generation(),
	})
}

// openStore opens the configured store, with flag overrides applied.
func (o *dictOptions) openStore(ctx context.Context, root *rootOptions) (dictionary.Store, error) {
	_, cfg, err := root.loadConfig()
	if err != nil {
		return nil, err
	}
	backend, path := cfg.Dictionary.Backend, cfg.Dictionary.Path
	if o.backend != "" {
		backend = o.backend
	}
	if o.path != "" {
		path = o.path
		if o.backend == "" && strings.EqualFold(backend, dictionary.BackendMemory) {
			backend = dictionary.BackendFile
		}
	}
	if strings.EqualFold(strings.TrimSpace(backend), dictionary.BackendMemory) {
		return nil, errVolatileBackend
	}
	store, err := dictionary.NewStore(ctx, backend, path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary store: %w", err)
	}
	return store, nil
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package dictionary persists the user dictionary and watches dictionary
// files for external edits.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/textfeature/internal/morph"
)

// Backend names accepted by NewStore.
const (
	BackendFile   = "file"
	BackendSqlite = "sqlite"
	BackendMemory = "memory"
)

var (
	// ErrUnknownBackend is returned by NewStore for an unsupported backend.
	ErrUnknownBackend = errors.New("unknown dictionary backend")
	// ErrPathRequired is returned when a persistent backend has no path.
	ErrPathRequired = errors.New("dictionary path required")
)

// Store loads and saves the complete user dictionary.
type Store interface {
	Load(ctx context.Context) ([]morph.Entry, error)
	Save(ctx context.Context, entries []morph.Entry) error
	Close() error
}

// NewStore opens the store for backend. An empty backend means file.
func NewStore(ctx context.Context, backend, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		if path == "" {
			return nil, fmt.Errorf("%w: backend %s", ErrPathRequired, BackendFile)
		}
		return NewFileStore(path), nil
	case BackendSqlite:
		if path == "" {
			return nil, fmt.Errorf("%w: backend %s", ErrPathRequired, BackendSqlite)
		}
		return OpenSqliteStore(ctx, path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

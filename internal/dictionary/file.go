// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dictionary

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/textfeature/internal/log"
	"github.com/ManuGH/textfeature/internal/morph"
)

// FileStore keeps the dictionary in a text file, one "word<TAB>TAG" line
// per entry.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the dictionary file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the file. A missing file is an empty dictionary.
func (s *FileStore) Load(ctx context.Context) ([]morph.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open dictionary file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := morph.ParseEntries(f)
	if err != nil {
		return nil, fmt.Errorf("parse dictionary file %s: %w", s.path, err)
	}
	return entries, nil
}

// Save replaces the file atomically.
func (s *FileStore) Save(ctx context.Context, entries []morph.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := log.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create dictionary dir: %w", err)
	}

	pendingFile, err := renameio.NewPendingFile(s.path, renameio.WithPermissions(0o640))
	if err != nil {
		return fmt.Errorf("create pending dictionary file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Msg("cleanup pending dictionary file")
		}
	}()

	if err := morph.WriteEntries(pendingFile, entries); err != nil {
		return fmt.Errorf("write dictionary data: %w", err)
	}
	// fsync and rename
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace dictionary file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}

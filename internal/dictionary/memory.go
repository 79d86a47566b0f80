// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dictionary

import (
	"context"
	"sync"

	"github.com/ManuGH/textfeature/internal/morph"
)

// MemoryStore keeps the dictionary in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []morph.Entry
	saves   int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore(initial ...morph.Entry) *MemoryStore {
	return &MemoryStore{entries: append([]morph.Entry(nil), initial...)}
}

func (s *MemoryStore) Load(ctx context.Context) ([]morph.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]morph.Entry(nil), s.entries...), nil
}

func (s *MemoryStore) Save(ctx context.Context, entries []morph.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]morph.Entry(nil), entries...)
	s.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemoryStore) Close() error { return nil }

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/textfeature/internal/cache"
	"github.com/ManuGH/textfeature/internal/dictionary"
	"github.com/ManuGH/textfeature/internal/persistence/sqlite"
)

// FuncChecker adapts a function. A failing critical check is unhealthy,
// a failing non-critical one degraded.
type FuncChecker struct {
	name     string
	critical bool
	fn       func(ctx context.Context) error
}

// NewFuncChecker creates a checker from fn.
func NewFuncChecker(name string, critical bool, fn func(ctx context.Context) error) *FuncChecker {
	return &FuncChecker{name: name, critical: critical, fn: fn}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult {
	if err := c.fn(ctx); err != nil {
		status := StatusDegraded
		if c.critical {
			status = StatusUnhealthy
		}
		return CheckResult{Status: status, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// DictionaryChecker loads the user dictionary from its store.
type DictionaryChecker struct {
	store dictionary.Store
}

// NewDictionaryChecker creates a checker for store.
func NewDictionaryChecker(store dictionary.Store) *DictionaryChecker {
	return &DictionaryChecker{store: store}
}

func (c *DictionaryChecker) Name() string { return "dictionary" }

func (c *DictionaryChecker) Check(ctx context.Context) CheckResult {
	entries, err := c.store.Load(ctx)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: fmt.Sprintf("%d entries", len(entries))}
}

// pinger is implemented by cache backends with a remote or on-disk store.
type pinger interface {
	HealthCheck(ctx context.Context) error
}

// CacheChecker checks the result cache. Cache failures only degrade the
// service since extraction works without it.
type CacheChecker struct {
	cache cache.Cache
}

// NewCacheChecker creates a checker for c.
func NewCacheChecker(c cache.Cache) *CacheChecker {
	return &CacheChecker{cache: c}
}

func (c *CacheChecker) Name() string { return "cache" }

func (c *CacheChecker) Check(ctx context.Context) CheckResult {
	if p, ok := c.cache.(pinger); ok {
		if err := p.HealthCheck(ctx); err != nil {
			return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: c.cache.Name()}
		}
	}
	s := c.cache.Stats()
	return CheckResult{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("%s: %d entries, %d hits, %d misses", c.cache.Name(), s.CurrentSize, s.Hits, s.Misses),
	}
}

// SqliteChecker runs a quick integrity check on a SQLite database.
type SqliteChecker struct {
	path string
}

// NewSqliteChecker creates a checker for the database at path.
func NewSqliteChecker(path string) *SqliteChecker {
	return &SqliteChecker{path: path}
}

func (c *SqliteChecker) Name() string { return "sqlite" }

func (c *SqliteChecker) Check(ctx context.Context) CheckResult {
	problems, err := sqlite.VerifyIntegrity(ctx, c.path, "quick")
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if len(problems) > 0 {
		return CheckResult{Status: StatusUnhealthy, Error: strings.Join(problems, "; ")}
	}
	return CheckResult{Status: StatusHealthy, Message: "integrity ok"}
}

// FileChecker checks if a file exists and is readable
type FileChecker struct {
	name string
	path string
}

// NewFileChecker creates a checker for file existence
func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{
		name: name,
		path: path,
	}
}

func (c *FileChecker) Name() string {
	return c.name
}

func (c *FileChecker) Check(context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{
			Status:  StatusHealthy,
			Message: "not configured (optional)",
		}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusUnhealthy,
				Error:   "file not found",
				Message: c.path,
			}
		}
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  err.Error(),
		}
	}

	if info.IsDir() {
		return CheckResult{
			Status: StatusUnhealthy,
			Error:  "expected file, got directory",
		}
	}

	if info.Size() == 0 {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "file is empty",
		}
	}

	return CheckResult{
		Status:  StatusHealthy,
		Message: "file exists and readable",
	}
}

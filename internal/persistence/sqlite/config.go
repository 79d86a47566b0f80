// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sqlite opens SQLite databases with the pragmas every store
// relies on and applies versioned schemas.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure Go driver
)

// Config holds connection pool parameters.
type Config struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DefaultConfig returns the settings used by the dictionary store.
func DefaultConfig() Config {
	return Config{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
}

// Open returns a pool where every connection runs in WAL mode with a busy
// timeout.
func Open(ctx context.Context, dbPath string, cfg Config) (*sql.DB, error) {
	// _pragma in the DSN applies to every pooled connection
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		dbPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return db, nil
}

// Migration brings the schema to Version.
type Migration struct {
	Version int
	Schema  string
}

// Migrate applies every migration newer than PRAGMA user_version in one
// transaction and records the final version.
func Migrate(ctx context.Context, db *sql.DB, migrations []Migration) (int, error) {
	var current int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return 0, fmt.Errorf("sqlite: read user_version: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return current, err
	}
	defer func() { _ = tx.Rollback() }()

	target := current
	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.Schema); err != nil {
			return current, fmt.Errorf("sqlite: migration %d: %w", m.Version, err)
		}
		target = max(target, m.Version)
	}
	if target == current {
		return current, nil
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", target)); err != nil {
		return current, err
	}
	if err := tx.Commit(); err != nil {
		return current, err
	}
	return target, nil
}

// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package dictionary

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ManuGH/textfeature/internal/morph"
	"github.com/ManuGH/textfeature/internal/persistence/sqlite"
)

var sqliteMigrations = []sqlite.Migration{
	{Version: 1, Schema: `
	CREATE TABLE IF NOT EXISTS user_dictionary (
		word TEXT PRIMARY KEY,
		tag TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_user_dictionary_position ON user_dictionary(position);
	`},
	{Version: 2, Schema: `
	CREATE TABLE IF NOT EXISTS dictionary_revisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entries INTEGER NOT NULL,
		saved_at_ms INTEGER NOT NULL
	);
	`},
}

// SqliteStore keeps the dictionary in a SQLite table ordered by position.
type SqliteStore struct {
	DB   *sql.DB
	path string
}

// OpenSqliteStore opens or creates the database at path.
func OpenSqliteStore(ctx context.Context, path string) (*SqliteStore, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if _, err := sqlite.Migrate(ctx, db, sqliteMigrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("dictionary store: migration failed: %w", err)
	}
	return &SqliteStore{DB: db, path: path}, nil
}

// Path returns the database file path.
func (s *SqliteStore) Path() string {
	return s.path
}

func (s *SqliteStore) Load(ctx context.Context) ([]morph.Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT word, tag FROM user_dictionary ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query dictionary: %w", err)
	}
	defer rows.Close()

	var out []morph.Entry
	for rows.Next() {
		var e morph.Entry
		var tag string
		if err := rows.Scan(&e.Word, &tag); err != nil {
			return nil, fmt.Errorf("scan dictionary row: %w", err)
		}
		e.Tag = morph.Tag(tag)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Save replaces all rows in one transaction.
func (s *SqliteStore) Save(ctx context.Context, entries []morph.Entry) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_dictionary`); err != nil {
		return fmt.Errorf("clear dictionary: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO user_dictionary (word, tag, position) VALUES (?, ?, ?)
	ON CONFLICT(word) DO UPDATE SET tag = excluded.tag`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Word, string(e.Tag), i); err != nil {
			return fmt.Errorf("insert %q: %w", e.Word, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO dictionary_revisions (entries, saved_at_ms) VALUES (?, CAST(strftime('%s','now') AS INTEGER) * 1000)`,
		len(entries)); err != nil {
		return fmt.Errorf("record revision: %w", err)
	}
	return tx.Commit()
}

// Revisions returns how many saves were recorded.
func (s *SqliteStore) Revisions(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM dictionary_revisions`).Scan(&n)
	return n, err
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}

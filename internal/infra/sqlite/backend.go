// Package sqlite keeps the device archive in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // driver: sqlite
)

const defaultDSN = "file:reading-quiz.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

const schema = `
CREATE TABLE IF NOT EXISTS kv_collections (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at INTEGER NOT NULL
);`

// Backend is a store.Backend over one SQLite table.
type Backend struct {
	db *sql.DB
}

// Open opens (or creates) the database and ensures the schema exists.
// An empty dsn uses reading-quiz.db in the working directory.
func Open(ctx context.Context, dsn string) (*Backend, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Backend{db: db}, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv_collections WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (b *Backend) Save(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx, `
INSERT INTO kv_collections (key, value, updated_at) VALUES (?, ?, strftime('%s','now'))
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, value)
	return err
}

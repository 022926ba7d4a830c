package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Backend keeps collections in the kv_collections table (see migrations).
type Backend struct {
	pool *pgxpool.Pool
}

func NewBackend(pool *pgxpool.Pool) *Backend {
	return &Backend{pool: pool}
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := b.pool.QueryRow(ctx, `SELECT value FROM kv_collections WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load %s: %w", key, err)
	}
	return raw, true, nil
}

func (b *Backend) Save(ctx context.Context, key string, value []byte) error {
	_, err := b.pool.Exec(ctx, `
INSERT INTO kv_collections (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Package store keeps the quiz archive and the submission log behind a
// minimal keyed load/save contract. Every mutation rewrites the whole
// collection, so the last write wins.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"
)

// Backend persists raw values by key (memory, SQLite, Redis, Postgres).
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
}

// ErrBackend wraps failures of the underlying backend.
var ErrBackend = errors.New("store backend failure")

// Keys are the two collection keys for one device namespace.
type Keys struct {
	Quizzes     string
	Submissions string
}

// KeysFor derives collection keys from a namespace.
func KeysFor(namespace string) Keys {
	if namespace == "" {
		namespace = "leesmeester"
	}
	return Keys{
		Quizzes:     namespace + "_quizzes",
		Submissions: namespace + "_submissions",
	}
}

// Collection is a typed list stored under one key.
type Collection[T any] struct {
	backend Backend
	key     string
}

func NewCollection[T any](backend Backend, key string) *Collection[T] {
	return &Collection[T]{backend: backend, key: key}
}

// Load returns the stored items. Missing, unreadable or corrupt data yields
// an empty list rather than an error.
func (c *Collection[T]) Load(ctx context.Context) []T {
	items, err := c.load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("load failed, using empty collection")
		return []T{}
	}
	return items
}

// load is the read half of a mutation: backend failures are returned so the
// caller never saves over data it could not read. Missing or corrupt data is
// still an empty list.
func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	raw, ok, err := c.backend.Load(ctx, c.key)
	if err != nil {
		return nil, errors.Join(ErrBackend, err)
	}
	if !ok || len(raw) == 0 {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("corrupt collection, using empty collection")
		return []T{}, nil
	}
	if items == nil {
		return []T{}, nil
	}
	return items, nil
}

// Save replaces the stored items.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.backend.Save(ctx, c.key, raw); err != nil {
		return errors.Join(ErrBackend, err)
	}
	return nil
}

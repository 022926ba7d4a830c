package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Backend stores collections as plain string values (GET/SET).
type Backend struct {
	client *redis.Client
}

func NewBackend(client *redis.Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) Load(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (b *Backend) Save(ctx context.Context, key string, value []byte) error {
	return b.client.Set(ctx, key, value, 0).Err()
}

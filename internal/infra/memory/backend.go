package memory

import (
	"context"
	"sync"
)

// Backend is an in-process store.Backend. Contents are lost on restart.
type Backend struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewBackend() *Backend {
	return &Backend{values: make(map[string][]byte)}
}

func (b *Backend) Load(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (b *Backend) Save(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = append([]byte(nil), value...)
	return nil
}

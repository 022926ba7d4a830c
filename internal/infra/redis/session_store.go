package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reading-quiz-service/internal/app"
	"reading-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps session snapshots as JSON. Every save refreshes the
// TTL, so only idle sessions expire.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Save(ctx context.Context, rec app.SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.key(rec.ID), raw, s.ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, id string) (app.SessionRecord, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return app.SessionRecord{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return app.SessionRecord{}, fmt.Errorf("load session: %w", err)
	}
	var rec app.SessionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return app.SessionRecord{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}

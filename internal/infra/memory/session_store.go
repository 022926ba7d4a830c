package memory

import (
	"context"
	"sync"
	"time"

	"reading-quiz-service/internal/app"
	"reading-quiz-service/internal/domain"

	"github.com/rs/zerolog/log"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions idle for longer than ttl are dropped on access; ttl <= 0 keeps
// them forever.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	sessions map[string]storedSession
}

type storedSession struct {
	rec       app.SessionRecord
	expiresAt time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[string]storedSession),
	}
}

func (s *SessionStore) Save(_ context.Context, rec app.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := storedSession{rec: rec}
	entry.rec.State = rec.State.Clone()
	if s.ttl > 0 {
		entry.expiresAt = s.clock().Add(s.ttl)
	}
	s.sessions[rec.ID] = entry
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (app.SessionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return app.SessionRecord{}, domain.ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(s.clock()) {
		delete(s.sessions, id)
		return app.SessionRecord{}, domain.ErrSessionNotFound
	}
	rec := entry.rec
	rec.State = entry.rec.State.Clone()
	return rec, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Sweep drops expired sessions and reports how many remain.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	for id, entry := range s.sessions {
		if !entry.expiresAt.IsZero() && !entry.expiresAt.After(now) {
			delete(s.sessions, id)
		}
	}
	return len(s.sessions)
}

// RunJanitor sweeps every interval until ctx is done. Abandoned sessions are
// otherwise only dropped when someone asks for them.
func (s *SessionStore) RunJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			left := s.Sweep()
			log.Debug().Int("sessions", left).Msg("session sweep")
		}
	}
}

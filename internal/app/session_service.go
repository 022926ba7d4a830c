package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/session"

	"github.com/rs/zerolog/log"
)

// SessionRecord is the stored form of a quiz-taking session. Quiz is set
// when the session runs a quiz exactly as it arrived in a shared link.
type SessionRecord struct {
	ID     string        `json:"id"`
	QuizID string        `json:"quizId"`
	Quiz   *domain.Quiz  `json:"quiz,omitempty"`
	State  session.State `json:"state"`
}

// SessionRepository abstracts how sessions are stored (in-memory, Redis).
// Get returns domain.ErrSessionNotFound for unknown or expired sessions.
type SessionRepository interface {
	Save(ctx context.Context, rec SessionRecord) error
	Get(ctx context.Context, id string) (SessionRecord, error)
	Delete(ctx context.Context, id string) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// SubmissionRecorder receives the submission of a finished student session.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, sub domain.Submission) error
}

// SessionService runs quiz sessions on behalf of remote clients.
type SessionService struct {
	sessions SessionRepository
	quizzes  QuizRepository
	recorder SubmissionRecorder
	locks    keyedMutex
	now      func() time.Time
	newID    func() string
}

func NewSessionService(sessions SessionRepository, quizzes QuizRepository, recorder SubmissionRecorder) *SessionService {
	return &SessionService{
		sessions: sessions,
		quizzes:  quizzes,
		recorder: recorder,
		now:      time.Now,
		newID:    domain.NewID,
	}
}

// NewSessionServiceWithClock is test-only for deterministic ids and timestamps.
func NewSessionServiceWithClock(sessions SessionRepository, quizzes QuizRepository, recorder SubmissionRecorder, now func() time.Time, newID func() string) *SessionService {
	s := NewSessionService(sessions, quizzes, recorder)
	s.now = now
	s.newID = newID
	return s
}

// Start opens a session over an archived quiz.
func (s *SessionService) Start(ctx context.Context, quizID string, mode session.Mode, studentName string) (SessionView, error) {
	if !mode.Valid() {
		return SessionView{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return SessionView{}, err
	}
	return s.begin(ctx, SessionRecord{ID: s.newID(), QuizID: quiz.ID, State: session.NewState(mode, studentName)}, quiz)
}

// StartQuiz opens a session over quiz as given, even when an archived quiz
// shares its id.
func (s *SessionService) StartQuiz(ctx context.Context, quiz domain.Quiz, mode session.Mode, studentName string) (SessionView, error) {
	if !mode.Valid() {
		return SessionView{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}
	pinned := quiz
	rec := SessionRecord{ID: s.newID(), QuizID: quiz.ID, Quiz: &pinned, State: session.NewState(mode, studentName)}
	return s.begin(ctx, rec, quiz)
}

func (s *SessionService) begin(ctx context.Context, rec SessionRecord, quiz domain.Quiz) (SessionView, error) {
	if err := s.sessions.Save(ctx, rec); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	log.Info().Str("sessionId", rec.ID).Str("quizId", quiz.ID).Str("mode", string(rec.State.Mode)).Msg("session started")
	return NewSessionView(rec.ID, quiz, rec.State), nil
}

// Get returns the current view of a session.
func (s *SessionService) Get(ctx context.Context, id string) (SessionView, error) {
	rec, quiz, err := s.load(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	return NewSessionView(rec.ID, quiz, rec.State), nil
}

// Handle applies one user action. Rejected actions leave the session as it
// was and report accepted=false. A finishing student session records its
// submission before the finished state is stored.
func (s *SessionService) Handle(ctx context.Context, id string, ev session.Event) (SessionView, bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, quiz, err := s.load(ctx, id)
	if err != nil {
		return SessionView{}, false, err
	}
	sess := session.Resume(quiz, rec.State, session.WithClock(s.now), session.WithIDs(s.newID))
	res := sess.Handle(ev)
	if !res.Accepted {
		return NewSessionView(rec.ID, quiz, rec.State), false, nil
	}
	if res.Submission != nil {
		if err := s.recorder.RecordSubmission(ctx, *res.Submission); err != nil {
			return SessionView{}, false, err
		}
	}
	rec.State = sess.State()
	if err := s.sessions.Save(ctx, rec); err != nil {
		return SessionView{}, false, fmt.Errorf("save session: %w", err)
	}
	return NewSessionView(rec.ID, quiz, rec.State), true, nil
}

// Reset discards all progress and returns the session to its initial state.
func (s *SessionService) Reset(ctx context.Context, id string) (SessionView, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	rec, quiz, err := s.load(ctx, id)
	if err != nil {
		return SessionView{}, err
	}
	sess := session.Resume(quiz, rec.State)
	sess.Reset()
	rec.State = sess.State()
	if err := s.sessions.Save(ctx, rec); err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return NewSessionView(rec.ID, quiz, rec.State), nil
}

// End forgets a session.
func (s *SessionService) End(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.sessions.Delete(ctx, id)
}

func (s *SessionService) load(ctx context.Context, id string) (SessionRecord, domain.Quiz, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return SessionRecord{}, domain.Quiz{}, err
	}
	if rec.Quiz != nil {
		return rec, *rec.Quiz, nil
	}
	quiz, err := s.quizzes.GetQuiz(ctx, rec.QuizID)
	if err != nil {
		return SessionRecord{}, domain.Quiz{}, err
	}
	return rec, quiz, nil
}

// keyedMutex serializes work per session id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

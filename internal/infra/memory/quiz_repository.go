package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"reading-quiz-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// QuizLoader fetches quiz content from the archive.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches archived quizzes for running sessions. Entries live
// for ttl plus up to 10% jitter; concurrent misses for the same quiz share
// one load. Failed lookups are not cached, so a quiz archived after a miss
// is found on the next call.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	group  singleflight.Group

	mu      sync.RWMutex
	rnd     *rand.Rand
	entries map[string]quizEntry
}

type quizEntry struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]quizEntry),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(quizID); ok {
		return quiz, nil
	}
	v, err, _ := r.group.Do(quizID, func() (interface{}, error) {
		if quiz, ok := r.cached(quizID); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.store(quizID, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return v.(domain.Quiz), nil
}

func (r *QuizRepository) cached(quizID string) (domain.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[quizID]
	if !ok || !e.expiresAt.After(r.clock()) {
		return domain.Quiz{}, false
	}
	return e.quiz, true
}

func (r *QuizRepository) store(quizID string, quiz domain.Quiz) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitter := time.Duration(r.rnd.Int63n(int64(r.ttl)/10 + 1))
	r.entries[quizID] = quizEntry{quiz: quiz, expiresAt: r.clock().Add(r.ttl + jitter)}
}

// StaticQuizLoader serves a fixed set of quizzes.
type StaticQuizLoader struct {
	quizzes map[string]domain.Quiz
}

func NewStaticQuizLoader(quizzes map[string]domain.Quiz) *StaticQuizLoader {
	return &StaticQuizLoader{quizzes: quizzes}
}

func (l *StaticQuizLoader) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := l.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

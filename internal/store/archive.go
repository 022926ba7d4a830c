package store

import (
	"context"
	"sync"

	"reading-quiz-service/internal/domain"
)

// Archive owns generated quizzes, most recent first. Quizzes are never deleted.
type Archive struct {
	mu      sync.Mutex
	quizzes *Collection[domain.Quiz]
}

func NewArchive(backend Backend, key string) *Archive {
	return &Archive{quizzes: NewCollection[domain.Quiz](backend, key)}
}

// List returns every archived quiz, most recent first.
func (a *Archive) List(ctx context.Context) []domain.Quiz {
	return a.quizzes.Load(ctx)
}

// Find returns the quiz with id, or domain.ErrQuizNotFound.
func (a *Archive) Find(ctx context.Context, id string) (domain.Quiz, error) {
	for _, q := range a.quizzes.Load(ctx) {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// LoadQuiz lets the archive back a quiz cache.
func (a *Archive) LoadQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	return a.Find(ctx, id)
}

// Add puts quiz at the front of the archive.
func (a *Archive) Add(ctx context.Context, quiz domain.Quiz) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	current, err := a.quizzes.load(ctx)
	if err != nil {
		return err
	}
	return a.quizzes.Save(ctx, append([]domain.Quiz{quiz}, current...))
}

// AddIfAbsent adds quiz unless a quiz with the same id is archived.
// It reports whether the quiz was added.
func (a *Archive) AddIfAbsent(ctx context.Context, quiz domain.Quiz) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	current, err := a.quizzes.load(ctx)
	if err != nil {
		return false, err
	}
	for _, q := range current {
		if q.ID == quiz.ID {
			return false, nil
		}
	}
	if err := a.quizzes.Save(ctx, append([]domain.Quiz{quiz}, current...)); err != nil {
		return false, err
	}
	return true, nil
}

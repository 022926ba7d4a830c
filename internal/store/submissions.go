package store

import (
	"context"
	"sync"

	"reading-quiz-service/internal/domain"
)

// Submissions is the append-only log of completed attempts.
type Submissions struct {
	mu   sync.Mutex
	subs *Collection[domain.Submission]
}

func NewSubmissions(backend Backend, key string) *Submissions {
	return &Submissions{subs: NewCollection[domain.Submission](backend, key)}
}

// Append records a submission after the existing ones.
func (s *Submissions) Append(ctx context.Context, sub domain.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.subs.load(ctx)
	if err != nil {
		return err
	}
	return s.subs.Save(ctx, append(current, sub))
}

// List returns all submissions in append order.
func (s *Submissions) List(ctx context.Context) []domain.Submission {
	return s.subs.Load(ctx)
}

// ForQuiz returns the submissions for one quiz in append order.
func (s *Submissions) ForQuiz(ctx context.Context, quizID string) []domain.Submission {
	var out []domain.Submission
	for _, sub := range s.subs.Load(ctx) {
		if sub.QuizID == quizID {
			out = append(out, sub)
		}
	}
	return out
}

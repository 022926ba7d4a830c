package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuizRepositoryCachesInRedis(t *testing.T) {
	mr := runRedis(t)
	client := newClient(mr)

	loader := &countingLoader{
		QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{
			"quiz-1": sampleQuiz(),
		}),
	}
	repo := NewQuizRepository(client, loader, time.Minute)

	quiz, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if quiz.Title != "De vos" {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
	if !mr.Exists("quiz:quiz-1:encoded") {
		t.Fatalf("expected cached payload in redis")
	}
	if ttl := mr.TTL("quiz:quiz-1:encoded"); ttl < time.Minute || ttl > 66*time.Second {
		t.Fatalf("expected ttl with jitter, got %v", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get cached quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached.Questions) != 1 || cached.Questions[0].Choice.CorrectIndex != 0 {
		t.Fatalf("cached quiz lost content: %+v", cached)
	}
}

func TestQuizRepositoryIgnoresCorruptCache(t *testing.T) {
	mr := runRedis(t)
	client := newClient(mr)
	loader := &countingLoader{QuizLoader: memory.NewStaticQuizLoader(map[string]domain.Quiz{"quiz-1": sampleQuiz()})}
	repo := NewQuizRepository(client, loader, time.Minute)

	if err := mr.Set("quiz:quiz-1:encoded", "%%%not-base64"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := repo.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected fallback to loader, calls=%d", loader.calls)
	}
}

func TestQuizRepositoryMiss(t *testing.T) {
	mr := runRedis(t)
	repo := NewQuizRepository(newClient(mr), memory.NewStaticQuizLoader(nil), time.Minute)
	if _, err := repo.GetQuiz(context.Background(), "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	memory.QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "De vos",
		Questions: []domain.Question{
			domain.NewClosedQuestion("q1", domain.CategoryMainIdea, "Waar gaat het over?", []string{"Vos", "Kat"}, 0),
		},
	}
}

func runRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

package redis

import (
	"context"
	"errors"
	"testing"

	"reading-quiz-service/internal/store"
)

func TestBackendWithArchive(t *testing.T) {
	mr := runRedis(t)
	ctx := context.Background()
	keys := store.KeysFor("klas5")
	archive := store.NewArchive(NewBackend(newClient(mr)), keys.Quizzes)

	if got := archive.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty archive, got %d", len(got))
	}
	if err := archive.Add(ctx, sampleQuiz()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if !mr.Exists("klas5_quizzes") {
		t.Fatalf("expected namespaced key")
	}

	if err := mr.Set("klas5_quizzes", "{broken"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if got := archive.List(ctx); len(got) != 0 {
		t.Fatalf("expected corrupt archive to read as empty, got %d", len(got))
	}
}

func TestBackendSaveError(t *testing.T) {
	mr := runRedis(t)
	client := newClient(mr)
	archive := store.NewArchive(NewBackend(client), "x_quizzes")
	mr.Close()

	if err := archive.Add(context.Background(), sampleQuiz()); !errors.Is(err, store.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
}

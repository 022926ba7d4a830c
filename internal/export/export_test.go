package export

import (
	"strings"
	"testing"

	"reading-quiz-service/internal/domain"
)

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "De vos",
		Questions: []domain.Question{
			domain.NewClosedQuestion("q1", domain.CategoryMainIdea, "Waar gaat het over?", []string{"Vos", "Kat", "Hond"}, 0),
			domain.NewOpenQuestion("q2", domain.CategoryOpinion, "Wat vind jij?"),
			domain.NewClosedQuestion("q3", domain.CategoryWH, "Waar woont de vos?", []string{"Bos", "Zee"}, 1),
		},
	}
}

func TestImportSheet(t *testing.T) {
	got := ImportSheet(sampleQuiz())
	want := "Waar gaat het over?\tVos\tKat\tHond\t\t20\t1\n" +
		"Waar woont de vos?\tBos\tZee\t\t\t20\t2"
	if got != want {
		t.Fatalf("unexpected sheet:\n%q\nwant\n%q", got, want)
	}
}

func TestImportSheetKeepsColumnsOnOneLine(t *testing.T) {
	quiz := domain.Quiz{Questions: []domain.Question{
		domain.NewClosedQuestion("q1", domain.CategoryTextType, "Twee\tregels\nhier", []string{"a\tb", "c"}, 1),
	}}
	got := ImportSheet(quiz)
	if strings.Contains(got, "\n") {
		t.Fatalf("expected a single row, got %q", got)
	}
	if cols := strings.Split(got, "\t"); len(cols) != 7 {
		t.Fatalf("expected 7 columns, got %d: %q", len(cols), got)
	}
}

func TestImportSheetOpenOnly(t *testing.T) {
	quiz := domain.Quiz{Questions: []domain.Question{domain.NewOpenQuestion("q1", domain.CategoryOpinion, "Waarom?")}}
	if got := ImportSheet(quiz); got != "" {
		t.Fatalf("expected empty sheet, got %q", got)
	}
}

func TestNumberedList(t *testing.T) {
	got := NumberedList(sampleQuiz())
	want := "1. Waar gaat het over?\nA) Vos\nB) Kat\nC) Hond\nCorrect: A\n" +
		"\n" +
		"2. Wat vind jij?\n[Open question]\n" +
		"\n" +
		"3. Waar woont de vos?\nA) Bos\nB) Zee\nCorrect: B\n"
	if got != want {
		t.Fatalf("unexpected list:\n%s\nwant\n%s", got, want)
	}
}

func TestRender(t *testing.T) {
	quiz := sampleQuiz()
	if got, err := Render(quiz, FormatSheet); err != nil || got != ImportSheet(quiz) {
		t.Fatalf("sheet render mismatch: %v", err)
	}
	if got, err := Render(quiz, ""); err != nil || got != NumberedList(quiz) {
		t.Fatalf("default render mismatch: %v", err)
	}
	if _, err := Render(quiz, "pdf"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

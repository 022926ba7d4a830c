package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"reading-quiz-service/internal/app"
	"reading-quiz-service/internal/codec"
	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/export"
	"reading-quiz-service/internal/generation"
	"reading-quiz-service/internal/infra/memory"
	"reading-quiz-service/internal/session"
	"reading-quiz-service/internal/store"
)

type stubGenerator struct {
	quiz  domain.Quiz
	err   error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, in generation.Input) (domain.Quiz, error) {
	g.calls++
	if err := in.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	if g.err != nil {
		return domain.Quiz{}, g.err
	}
	return g.quiz, nil
}

type fixture struct {
	quizzes     *app.QuizService
	sessions    *app.SessionService
	archive     *store.Archive
	submissions *store.Submissions
	generator   *stubGenerator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	backend := memory.NewBackend()
	keys := store.KeysFor("test")
	archive := store.NewArchive(backend, keys.Quizzes)
	submissions := store.NewSubmissions(backend, keys.Submissions)
	generator := &stubGenerator{quiz: sampleQuiz("quiz-1")}
	quizzes := app.NewQuizService(generator, archive, submissions, "https://quiz.example/play")

	ids := 0
	sessions := app.NewSessionServiceWithClock(
		memory.NewSessionStore(time.Hour),
		memory.NewQuizRepository(archive, time.Minute),
		quizzes,
		func() time.Time { return time.UnixMilli(1700000000000) },
		func() string { ids++; return "id-" + string(rune('0'+ids)) },
	)
	return fixture{quizzes: quizzes, sessions: sessions, archive: archive, submissions: submissions, generator: generator}
}

func sampleQuiz(id string) domain.Quiz {
	return domain.Quiz{
		ID:       id,
		Title:    "De vos",
		FullText: "De vos sluipt door het bos.",
		Questions: []domain.Question{
			domain.NewClosedQuestion("q1", domain.CategoryMainIdea, "Waar gaat het over?", []string{"Vos", "Kat", "Hond"}, 0),
			domain.NewClosedQuestion("q2", domain.CategoryWH, "Waar is de vos?", []string{"Zee", "Bos"}, 1),
			domain.NewOpenQuestion("q3", domain.CategoryOpinion, "Wat vind jij van de vos?"),
		},
		CreatedAt: 1700000000000,
	}
}

func TestGenerateArchivesQuiz(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	quiz, err := f.quizzes.Generate(ctx, generation.TextInput("De vos sluipt door het bos."))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	list := f.quizzes.Quizzes(ctx)
	if len(list) != 1 || list[0].ID != quiz.ID {
		t.Fatalf("expected generated quiz in archive, got %+v", list)
	}
}

func TestGenerateFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.generator.err = &generation.GenerationError{Err: errors.New("quota")}

	_, err := f.quizzes.Generate(ctx, generation.TextInput("tekst"))
	var genErr *generation.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected GenerationError, got %v", err)
	}
	if got := f.quizzes.Quizzes(ctx); len(got) != 0 {
		t.Fatalf("expected empty archive, got %d", len(got))
	}
}

func TestShareAndOpenLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if err := f.archive.Add(ctx, sampleQuiz("quiz-1")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	link, err := f.quizzes.ShareLink(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if !strings.HasPrefix(link, "https://quiz.example/play?d=") {
		t.Fatalf("unexpected link %q", link)
	}

	other := newFixture(t)
	quiz, added, err := other.quizzes.OpenLink(ctx, link)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !added || quiz.ID != "quiz-1" {
		t.Fatalf("expected quiz to be added, added=%v id=%q", added, quiz.ID)
	}
	if _, added, _ := other.quizzes.OpenLink(ctx, link); added {
		t.Fatalf("expected second open to leave archive unchanged")
	}
	if got := other.quizzes.Quizzes(ctx); len(got) != 1 {
		t.Fatalf("expected one archived quiz, got %d", len(got))
	}
}

func TestOpenLinkUnreadable(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.quizzes.OpenLink(context.Background(), "https://quiz.example/play?d=%25%25%25")
	var decErr *codec.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestShareLinkUnknownQuiz(t *testing.T) {
	f := newFixture(t)
	if _, err := f.quizzes.ShareLink(context.Background(), "nope"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestShareLinkBadBaseURL(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewBackend()
	archive := store.NewArchive(backend, "x_quizzes")
	_ = archive.Add(ctx, sampleQuiz("quiz-1"))
	svc := app.NewQuizService(&stubGenerator{}, archive, store.NewSubmissions(backend, "x_submissions"), "://bad")

	if _, err := svc.ShareLink(ctx, "quiz-1"); !errors.Is(err, domain.ErrNoLink) {
		t.Fatalf("expected ErrNoLink, got %v", err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.archive.Add(ctx, sampleQuiz("quiz-1"))

	sheet, err := f.quizzes.Export(ctx, "quiz-1", export.FormatSheet)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if lines := strings.Split(sheet, "\n"); len(lines) != 2 {
		t.Fatalf("expected two closed questions in sheet, got %q", sheet)
	}
}

func TestStudentSessionRecordsOneSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.archive.Add(ctx, sampleQuiz("quiz-1"))

	results, cancel, err := f.quizzes.SubscribeResults(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	if initial := <-results; len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial board, got %+v", initial)
	}

	view, err := f.sessions.Start(ctx, "quiz-1", session.ModeStudent, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Phase != session.PhaseNotStarted {
		t.Fatalf("expected name gate, got %s", view.Phase)
	}

	steps := []session.Event{
		{Type: session.EventStart, Name: "Noor"},
		session.SelectEvent(0),
		{Type: session.EventFeedback},
		{Type: session.EventNext},
		session.SelectEvent(0),
		{Type: session.EventFeedback},
		{Type: session.EventNext},
		{Type: session.EventRespond, Text: "Slim"},
		{Type: session.EventNext},
	}
	for i, ev := range steps {
		v, accepted, err := f.sessions.Handle(ctx, view.ID, ev)
		if err != nil || !accepted {
			t.Fatalf("step %d (%s): accepted=%v err=%v", i, ev.Type, accepted, err)
		}
		view = v
	}
	if view.Phase != session.PhaseFinished || view.Result == nil {
		t.Fatalf("expected finished view with result, got %+v", view)
	}
	if view.Result.Score != 1 || view.Result.MaxScore != 2 {
		t.Fatalf("expected 1/2, got %d/%d", view.Result.Score, view.Result.MaxScore)
	}

	if _, accepted, _ := f.sessions.Handle(ctx, view.ID, session.Event{Type: session.EventNext}); accepted {
		t.Fatalf("expected events after finish to be rejected")
	}

	subs := f.submissions.ForQuiz(ctx, "quiz-1")
	if len(subs) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(subs))
	}
	if subs[0].StudentName != "Noor" || subs[0].SubmittedAt != 1700000000000 {
		t.Fatalf("unexpected submission %+v", subs[0])
	}
	if txt, _ := subs[0].Answers["q3"].Text(); txt != "Slim" {
		t.Fatalf("open answer not recorded: %+v", subs[0].Answers)
	}

	select {
	case board := <-results:
		if len(board.Entries) != 1 || board.Entries[0].StudentName != "Noor" {
			t.Fatalf("unexpected board %+v", board)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected results update")
	}
}

func TestPreviewSessionRecordsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.archive.Add(ctx, sampleQuiz("quiz-1"))

	view, err := f.sessions.Start(ctx, "quiz-1", session.ModePreview, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for _, ev := range []session.Event{
		session.SelectEvent(1),
		{Type: session.EventFeedback},
		{Type: session.EventNext},
		session.SelectEvent(1),
		{Type: session.EventFeedback},
		{Type: session.EventNext},
		{Type: session.EventNext},
	} {
		if view, _, err = f.sessions.Handle(ctx, view.ID, ev); err != nil {
			t.Fatalf("handle %s: %v", ev.Type, err)
		}
	}
	if view.Phase != session.PhaseFinished {
		t.Fatalf("expected finished, got %s", view.Phase)
	}
	if got := f.submissions.List(ctx); len(got) != 0 {
		t.Fatalf("preview must not record submissions, got %d", len(got))
	}
}

func TestSessionViewHidesAnswerUntilFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.archive.Add(ctx, sampleQuiz("quiz-1"))

	view, _ := f.sessions.Start(ctx, "quiz-1", session.ModeStudent, "Sam")
	if view.Question == nil || view.Question.CorrectIndex != nil || view.Question.Explanation != "" {
		t.Fatalf("answer leaked before feedback: %+v", view.Question)
	}
	view, accepted, _ := f.sessions.Handle(ctx, view.ID, session.Event{Type: session.EventFeedback})
	if accepted {
		t.Fatalf("feedback without an answer must be rejected")
	}
	_, _, _ = f.sessions.Handle(ctx, view.ID, session.SelectEvent(2))
	view, _, _ = f.sessions.Handle(ctx, view.ID, session.Event{Type: session.EventFeedback})
	if view.Question.CorrectIndex == nil || *view.Question.CorrectIndex != 0 {
		t.Fatalf("expected correct index after feedback, got %+v", view.Question)
	}
	if view.Correct == nil || *view.Correct {
		t.Fatalf("expected wrong answer marker, got %v", view.Correct)
	}
}

func TestSessionResetAndEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.archive.Add(ctx, sampleQuiz("quiz-1"))

	view, _ := f.sessions.Start(ctx, "quiz-1", session.ModeStudent, "Sam")
	_, _, _ = f.sessions.Handle(ctx, view.ID, session.SelectEvent(1))

	view, err := f.sessions.Reset(ctx, view.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if view.Phase != session.PhaseNotStarted || view.StudentName != "" || view.Answer != nil {
		t.Fatalf("expected fresh state, got %+v", view)
	}

	if err := f.sessions.End(ctx, view.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := f.sessions.Get(ctx, view.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}
}

func TestStartRejectsUnknownQuizAndMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.sessions.Start(ctx, "nope", session.ModeStudent, "Sam"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	_ = f.archive.Add(ctx, sampleQuiz("quiz-1"))
	if _, err := f.sessions.Start(ctx, "quiz-1", "exam", "Sam"); !errors.Is(err, domain.ErrInvalidMode) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
}

func TestStartQuizRunsGivenCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	archived := sampleQuiz("quiz-1")
	archived.Title = "Archived"
	_ = f.archive.Add(ctx, archived)

	linked := sampleQuiz("quiz-1")
	view, err := f.sessions.StartQuiz(ctx, linked, session.ModePreview, "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Title != "De vos" {
		t.Fatalf("expected linked title, got %q", view.Title)
	}
	view, accepted, err := f.sessions.Handle(ctx, view.ID, session.SelectEvent(0))
	if err != nil || !accepted || view.Title != "De vos" {
		t.Fatalf("handle: accepted=%v err=%v title=%q", accepted, err, view.Title)
	}
	if _, err := f.sessions.StartQuiz(ctx, linked, "exam", ""); !errors.Is(err, domain.ErrInvalidMode) {
		t.Fatalf("expected invalid mode, got %v", err)
	}
}

func TestResultsOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_ = f.archive.Add(ctx, sampleQuiz("quiz-1"))

	for _, sub := range []domain.Submission{
		{ID: "a", QuizID: "quiz-1", StudentName: "Bo", Score: 1, MaxScore: 2, SubmittedAt: 10},
		{ID: "b", QuizID: "quiz-1", StudentName: "Ali", Score: 2, MaxScore: 2, SubmittedAt: 20},
		{ID: "c", QuizID: "quiz-2", StudentName: "Eva", Score: 2, MaxScore: 2, SubmittedAt: 5},
	} {
		if err := f.quizzes.RecordSubmission(ctx, sub); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	board, err := f.quizzes.Results(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(board.Entries) != 2 || board.Entries[0].StudentName != "Bo" || board.Entries[1].StudentName != "Ali" {
		t.Fatalf("unexpected board %+v", board.Entries)
	}
}

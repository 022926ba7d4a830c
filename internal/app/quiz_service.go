package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reading-quiz-service/internal/codec"
	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/export"
	"reading-quiz-service/internal/generation"

	"github.com/rs/zerolog/log"
)

// Generator turns source material into a quiz (Gemini in production).
type Generator interface {
	Generate(ctx context.Context, in generation.Input) (domain.Quiz, error)
}

// QuizArchive is the device-local list of quizzes.
type QuizArchive interface {
	List(ctx context.Context) []domain.Quiz
	Find(ctx context.Context, id string) (domain.Quiz, error)
	Add(ctx context.Context, quiz domain.Quiz) error
	AddIfAbsent(ctx context.Context, quiz domain.Quiz) (bool, error)
}

// SubmissionLog is the device-local append-only list of completed attempts.
type SubmissionLog interface {
	Append(ctx context.Context, sub domain.Submission) error
	ForQuiz(ctx context.Context, quizID string) []domain.Submission
}

// QuizService contains the teacher-facing use cases.
type QuizService struct {
	generator   Generator
	archive     QuizArchive
	submissions SubmissionLog
	feed        *ResultsFeed
	publicURL   string
	now         func() time.Time
}

func NewQuizService(generator Generator, archive QuizArchive, submissions SubmissionLog, publicURL string) *QuizService {
	return &QuizService{
		generator:   generator,
		archive:     archive,
		submissions: submissions,
		feed:        NewResultsFeed(),
		publicURL:   publicURL,
		now:         time.Now,
	}
}

// Generate creates a quiz from in and archives it. Nothing is stored when
// generation fails.
func (s *QuizService) Generate(ctx context.Context, in generation.Input) (domain.Quiz, error) {
	quiz, err := s.generator.Generate(ctx, in)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.archive.Add(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("archive quiz: %w", err)
	}
	return quiz, nil
}

// Quizzes lists the archive, most recent first.
func (s *QuizService) Quizzes(ctx context.Context) []domain.Quiz {
	return s.archive.List(ctx)
}

// Quiz returns one archived quiz.
func (s *QuizService) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.archive.Find(ctx, quizID)
}

// ShareLink returns the portable link for an archived quiz.
func (s *QuizService) ShareLink(ctx context.Context, quizID string) (string, error) {
	quiz, err := s.archive.Find(ctx, quizID)
	if err != nil {
		return "", err
	}
	link, err := codec.Link(s.publicURL, quiz)
	if err != nil {
		var encErr *codec.EncodeError
		if errors.As(err, &encErr) {
			log.Warn().Err(err).Str("quizId", quizID).Msg("quiz cannot be shared as a link")
			return "", fmt.Errorf("%w: %v", domain.ErrNoLink, err)
		}
		return "", err
	}
	return link, nil
}

// OpenLink decodes a shared link (or its bare parameter) and archives the
// quiz if this device has not seen it. A *codec.DecodeError is returned for
// unreadable links.
func (s *QuizService) OpenLink(ctx context.Context, link string) (domain.Quiz, bool, error) {
	quiz, err := codec.FromLink(link)
	if err != nil {
		return domain.Quiz{}, false, err
	}
	added, err := s.archive.AddIfAbsent(ctx, quiz)
	if err != nil {
		return domain.Quiz{}, false, fmt.Errorf("archive shared quiz: %w", err)
	}
	if added {
		log.Info().Str("quizId", quiz.ID).Msg("shared quiz added to archive")
	}
	return quiz, added, nil
}

// Export renders an archived quiz as text.
func (s *QuizService) Export(ctx context.Context, quizID string, format export.Format) (string, error) {
	quiz, err := s.archive.Find(ctx, quizID)
	if err != nil {
		return "", err
	}
	return export.Render(quiz, format)
}

// Results returns the ordered results board for an archived quiz.
func (s *QuizService) Results(ctx context.Context, quizID string) (domain.ResultsBoard, error) {
	if _, err := s.archive.Find(ctx, quizID); err != nil {
		return domain.ResultsBoard{}, err
	}
	return s.board(ctx, quizID), nil
}

// RecordSubmission appends a finished attempt and pushes the new board to
// live viewers.
func (s *QuizService) RecordSubmission(ctx context.Context, sub domain.Submission) error {
	if err := s.submissions.Append(ctx, sub); err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	log.Info().
		Str("quizId", sub.QuizID).
		Str("student", sub.StudentName).
		Int("score", sub.Score).
		Int("maxScore", sub.MaxScore).
		Int("viewers", s.feed.Viewers(sub.QuizID)).
		Msg("submission recorded")
	s.feed.Publish(s.board(ctx, sub.QuizID))
	return nil
}

// SubscribeResults streams results boards for a quiz, starting with the
// current one. The caller must invoke the returned cancel function.
func (s *QuizService) SubscribeResults(ctx context.Context, quizID string) (<-chan domain.ResultsBoard, func(), error) {
	if _, err := s.archive.Find(ctx, quizID); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(quizID, s.board(ctx, quizID))
	return ch, cancel, nil
}

func (s *QuizService) board(ctx context.Context, quizID string) domain.ResultsBoard {
	return domain.NewResultsBoard(quizID, s.submissions.ForQuiz(ctx, quizID), s.now())
}

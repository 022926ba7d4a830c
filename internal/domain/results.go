package domain

import "time"

// ResultEntry is a row of the results board.
type ResultEntry struct {
	SubmissionID string            `json:"submissionId"`
	StudentName  string            `json:"studentName"`
	Score        int               `json:"score"`
	MaxScore     int               `json:"maxScore"`
	SubmittedAt  int64             `json:"submittedAt"`
	Answers      map[string]Answer `json:"answers"`
}

// ResultsBoard lists the submissions for one quiz in the order they were
// recorded.
type ResultsBoard struct {
	QuizID    string        `json:"quizId"`
	Entries   []ResultEntry `json:"entries"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// NewResultsBoard keeps the submissions of quizID in append order.
// Submissions for other quizzes are skipped.
func NewResultsBoard(quizID string, submissions []Submission, now time.Time) ResultsBoard {
	entries := make([]ResultEntry, 0, len(submissions))
	for _, s := range submissions {
		if s.QuizID != quizID {
			continue
		}
		entries = append(entries, ResultEntry{
			SubmissionID: s.ID,
			StudentName:  s.StudentName,
			Score:        s.Score,
			MaxScore:     s.MaxScore,
			SubmittedAt:  s.SubmittedAt,
			Answers:      s.Answers,
		})
	}
	return ResultsBoard{QuizID: quizID, Entries: entries, UpdatedAt: now}
}

package domain

import (
	"strings"
	"time"
)

// AnonymousStudent is recorded when a submission arrives without a name.
const AnonymousStudent = "Anonymous"

// SourcePlaceholder is shown as the quiz text when the source was a URL or an uploaded file.
const SourcePlaceholder = "Read the source text on the website or on your worksheet."

// Category tags a question with the comprehension skill it trains.
// Values match the labels used by existing portable links.
type Category string

const (
	CategoryTextType      Category = "Tekstsoort"
	CategoryAuthorPurpose Category = "Bedoeling van de schrijver"
	CategoryMainIdea      Category = "Hoofdgedachte"
	CategoryWH            Category = "WWWWWH-vragen"
	CategoryOpinion       Category = "Mening & Reflectie"
)

// Categories lists every known category in presentation order.
func Categories() []Category {
	return []Category{
		CategoryTextType,
		CategoryAuthorPurpose,
		CategoryMainIdea,
		CategoryWH,
		CategoryOpinion,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// Choice holds the closed-form part of a question.
type Choice struct {
	Options      []string `validate:"min=2,max=4"`
	CorrectIndex int      `validate:"gte=0"`
}

// Question is one quiz item. A nil Choice marks an open (free response) question.
type Question struct {
	ID          string   `validate:"required"`
	Category    Category `validate:"category"`
	Text        string   `validate:"required"`
	Explanation string
	Choice      *Choice
}

// NewClosedQuestion builds a multiple-choice question.
func NewClosedQuestion(id string, category Category, text string, options []string, correct int) Question {
	return Question{
		ID:       id,
		Category: category,
		Text:     text,
		Choice:   &Choice{Options: options, CorrectIndex: correct},
	}
}

// NewOpenQuestion builds a free-response question.
func NewOpenQuestion(id string, category Category, text string) Question {
	return Question{ID: id, Category: category, Text: text}
}

// IsOpen reports whether the question is free response.
func (q Question) IsOpen() bool {
	return q.Choice == nil
}

// Quiz is one generated quiz. Question order is presentation order.
type Quiz struct {
	ID        string     `json:"id" validate:"required"`
	Title     string     `json:"title"`
	FullText  string     `json:"fullText"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
	CreatedAt int64      `json:"createdAt"` // epoch milliseconds
}

// ClosedCount returns the number of multiple-choice questions.
func (q Quiz) ClosedCount() int {
	n := 0
	for _, question := range q.Questions {
		if !question.IsOpen() {
			n++
		}
	}
	return n
}

// Question returns the question with the given id.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Submission is one completed attempt. It is never mutated after creation.
type Submission struct {
	ID          string            `json:"id"`
	QuizID      string            `json:"quizId"`
	StudentName string            `json:"studentName"`
	Answers     map[string]Answer `json:"answers"`
	Score       int               `json:"score"`
	MaxScore    int               `json:"maxScore"`
	SubmittedAt int64             `json:"submittedAt"` // epoch milliseconds
}

// StudentOrAnonymous returns the trimmed name, or AnonymousStudent when blank.
func StudentOrAnonymous(name string) string {
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return trimmed
	}
	return AnonymousStudent
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

package app

import (
	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/session"
)

// SessionView is what a client renders for a session. The correct option
// and explanation of a closed question stay hidden until feedback is shown.
type SessionView struct {
	ID            string         `json:"id"`
	QuizID        string         `json:"quizId"`
	Title         string         `json:"title"`
	FullText      string         `json:"fullText"`
	Mode          session.Mode   `json:"mode"`
	Phase         session.Phase  `json:"phase"`
	StudentName   string         `json:"studentName,omitempty"`
	Index         int            `json:"index"`
	Total         int            `json:"total"`
	FeedbackShown bool           `json:"feedbackShown"`
	Question      *QuestionView  `json:"question,omitempty"`
	Answer        *domain.Answer `json:"answer,omitempty"`
	Correct       *bool          `json:"correct,omitempty"`
	Result        *SessionResult `json:"result,omitempty"`
}

// QuestionView is one question as shown to the person taking the quiz.
type QuestionView struct {
	ID           string          `json:"id"`
	Category     domain.Category `json:"category"`
	Text         string          `json:"text"`
	IsOpen       bool            `json:"isOpen"`
	Options      []string        `json:"options,omitempty"`
	CorrectIndex *int            `json:"correctAnswerIndex,omitempty"`
	Explanation  string          `json:"explanation,omitempty"`
}

// SessionResult summarizes a finished session.
type SessionResult struct {
	Score    int          `json:"score"`
	MaxScore int          `json:"maxScore"`
	Review   []ReviewItem `json:"review"`
}

// ReviewItem pairs a question with the recorded answer.
type ReviewItem struct {
	QuestionID   string         `json:"questionId"`
	Text         string         `json:"text"`
	IsOpen       bool           `json:"isOpen"`
	Answer       *domain.Answer `json:"answer,omitempty"`
	CorrectIndex *int           `json:"correctAnswerIndex,omitempty"`
	Correct      bool           `json:"correct"`
}

// NewSessionView projects a session state onto its quiz.
func NewSessionView(id string, quiz domain.Quiz, st session.State) SessionView {
	view := SessionView{
		ID:            id,
		QuizID:        quiz.ID,
		Title:         quiz.Title,
		FullText:      quiz.FullText,
		Mode:          st.Mode,
		Phase:         st.Phase,
		StudentName:   st.StudentName,
		Index:         st.Index,
		Total:         len(quiz.Questions),
		FeedbackShown: st.FeedbackShown,
	}

	switch st.Phase {
	case session.PhaseInProgress:
		if st.Index < 0 || st.Index >= len(quiz.Questions) {
			break
		}
		q := quiz.Questions[st.Index]
		view.Question = questionView(q, st.FeedbackShown)
		if answer, ok := st.Answers[q.ID]; ok {
			a := answer
			view.Answer = &a
			if st.FeedbackShown && !q.IsOpen() {
				correct := isCorrect(q, answer)
				view.Correct = &correct
			}
		}
	case session.PhaseFinished:
		view.Result = sessionResult(quiz, st.Answers)
	}
	return view
}

func questionView(q domain.Question, reveal bool) *QuestionView {
	v := &QuestionView{ID: q.ID, Category: q.Category, Text: q.Text, IsOpen: q.IsOpen()}
	if q.IsOpen() {
		return v
	}
	v.Options = append([]string(nil), q.Choice.Options...)
	if reveal {
		idx := q.Choice.CorrectIndex
		v.CorrectIndex = &idx
		v.Explanation = q.Explanation
	}
	return v
}

func sessionResult(quiz domain.Quiz, answers map[string]domain.Answer) *SessionResult {
	score, maxScore := session.Score(quiz, answers)
	review := make([]ReviewItem, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		item := ReviewItem{QuestionID: q.ID, Text: q.Text, IsOpen: q.IsOpen()}
		if answer, ok := answers[q.ID]; ok {
			a := answer
			item.Answer = &a
			item.Correct = isCorrect(q, answer)
		}
		if !q.IsOpen() {
			idx := q.Choice.CorrectIndex
			item.CorrectIndex = &idx
		}
		review = append(review, item)
	}
	return &SessionResult{Score: score, MaxScore: maxScore, Review: review}
}

func isCorrect(q domain.Question, answer domain.Answer) bool {
	if q.IsOpen() {
		return false
	}
	option, ok := answer.Option()
	return ok && option == q.Choice.CorrectIndex
}

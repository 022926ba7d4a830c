package session

import (
	"sync"
	"time"

	"reading-quiz-service/internal/domain"
)

// Session is one person's pass through a quiz. Sessions share nothing, so
// two sessions over the same quiz keep independent answers.
type Session struct {
	mu    sync.Mutex
	quiz  domain.Quiz
	state State
	now   func() time.Time
	newID func() string
}

// Option customizes a Session.
type Option func(*Session)

// WithClock sets the time source used for submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDs sets the generator for submission ids.
func WithIDs(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// New starts a session in its initial state.
func New(quiz domain.Quiz, mode Mode, studentName string, opts ...Option) *Session {
	return Resume(quiz, NewState(mode, studentName), opts...)
}

// Resume rebuilds a session from a stored state.
func Resume(quiz domain.Quiz, st State, opts ...Option) *Session {
	if st.Answers == nil {
		st.Answers = map[string]domain.Answer{}
	}
	s := &Session{
		quiz:  quiz,
		state: st.Clone(),
		now:   time.Now,
		newID: domain.NewID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quiz returns the quiz being taken.
func (s *Session) Quiz() domain.Quiz {
	return s.quiz
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Current returns the question on screen; ok is false outside PhaseInProgress.
func (s *Session) Current() (domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return current(s.quiz, s.state)
}

// Selected returns the recorded answer for the current question.
func (s *Session) Selected() (domain.Answer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := current(s.quiz, s.state)
	if !ok {
		return domain.Answer{}, false
	}
	answer, ok := s.state.Answers[q.ID]
	return answer, ok
}

// Result is the outcome of handling one event.
type Result struct {
	Accepted   bool
	Submission *domain.Submission
}

// Handle applies ev. When the event finishes a student session the
// submission is returned; this happens at most once per session.
func (s *Session) Handle(ev Event) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := Transition(s.quiz, s.state, ev)
	if !ok {
		return Result{}
	}
	finished := s.state.Phase != PhaseFinished && next.Phase == PhaseFinished
	s.state = next

	res := Result{Accepted: true}
	if finished && next.Mode == ModeStudent {
		sub := s.submissionLocked()
		res.Submission = &sub
	}
	return res
}

// Start supplies the student name.
func (s *Session) Start(name string) bool {
	return s.Handle(Event{Type: EventStart, Name: name}).Accepted
}

// Select records an option for the current closed question.
func (s *Session) Select(option int) bool {
	return s.Handle(SelectEvent(option)).Accepted
}

// Respond records text for the current open question.
func (s *Session) Respond(text string) bool {
	return s.Handle(Event{Type: EventRespond, Text: text}).Accepted
}

// RevealFeedback shows whether the selected option was right.
func (s *Session) RevealFeedback() bool {
	return s.Handle(Event{Type: EventFeedback}).Accepted
}

// Advance moves to the next question, or finishes on the last one.
func (s *Session) Advance() Result {
	return s.Handle(Event{Type: EventNext})
}

// Reset discards everything and returns to the initial state for the mode.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = NewState(s.state.Mode, "")
}

func (s *Session) submissionLocked() domain.Submission {
	score, maxScore := Score(s.quiz, s.state.Answers)
	return domain.Submission{
		ID:          s.newID(),
		QuizID:      s.quiz.ID,
		StudentName: domain.StudentOrAnonymous(s.state.StudentName),
		Answers:     s.state.Clone().Answers,
		Score:       score,
		MaxScore:    maxScore,
		SubmittedAt: domain.Millis(s.now()),
	}
}

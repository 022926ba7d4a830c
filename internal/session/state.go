// Package session drives one person through a quiz: name entry, answer
// capture, feedback reveal, advancing and the final submission.
package session

import (
	"strings"

	"reading-quiz-service/internal/domain"
)

// Mode selects whether finishing a session produces a submission.
type Mode string

const (
	ModeStudent Mode = "student"
	ModePreview Mode = "preview"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeStudent || m == ModePreview
}

// Phase is the coarse position in the session lifecycle.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseFinished   Phase = "finished"
)

// State is the complete, serializable state of a session.
type State struct {
	Mode          Mode                     `json:"mode"`
	Phase         Phase                    `json:"phase"`
	StudentName   string                   `json:"studentName,omitempty"`
	Index         int                      `json:"index"`
	FeedbackShown bool                     `json:"feedbackShown"`
	Answers       map[string]domain.Answer `json:"answers"`
}

// NewState returns the initial state. Students without a name wait at
// PhaseNotStarted; everyone else starts on the first question.
func NewState(mode Mode, studentName string) State {
	st := State{
		Mode:        mode,
		Phase:       PhaseInProgress,
		StudentName: strings.TrimSpace(studentName),
		Answers:     map[string]domain.Answer{},
	}
	if mode == ModeStudent && st.StudentName == "" {
		st.Phase = PhaseNotStarted
	}
	return st
}

// Clone returns a copy that shares no mutable data with st.
func (st State) Clone() State {
	answers := make(map[string]domain.Answer, len(st.Answers))
	for k, v := range st.Answers {
		answers[k] = v
	}
	st.Answers = answers
	return st
}

// EventType names a user action.
type EventType string

const (
	EventStart    EventType = "start"
	EventSelect   EventType = "select"
	EventRespond  EventType = "respond"
	EventFeedback EventType = "feedback"
	EventNext     EventType = "next"
)

// Event is one user action. Name is read by start, Option by select and
// Text by respond. A select without an option is rejected.
type Event struct {
	Type   EventType `json:"type"`
	Name   string    `json:"name,omitempty"`
	Option *int      `json:"option,omitempty"`
	Text   string    `json:"text,omitempty"`
}

// SelectEvent picks option index on the current question.
func SelectEvent(option int) Event {
	return Event{Type: EventSelect, Option: &option}
}

// Transition applies ev to st. It returns the next state and whether the
// event was accepted; rejected events leave the state untouched.
func Transition(quiz domain.Quiz, st State, ev Event) (State, bool) {
	switch ev.Type {
	case EventStart:
		return start(st, ev.Name)
	case EventSelect:
		return selectOption(quiz, st, ev.Option)
	case EventRespond:
		return respond(quiz, st, ev.Text)
	case EventFeedback:
		return revealFeedback(quiz, st)
	case EventNext:
		return advance(quiz, st)
	default:
		return st, false
	}
}

func start(st State, name string) (State, bool) {
	name = strings.TrimSpace(name)
	if st.Phase != PhaseNotStarted || name == "" {
		return st, false
	}
	next := st.Clone()
	next.StudentName = name
	next.Phase = PhaseInProgress
	next.Index = 0
	next.FeedbackShown = false
	return next, true
}

func current(quiz domain.Quiz, st State) (domain.Question, bool) {
	if st.Phase != PhaseInProgress || st.Index < 0 || st.Index >= len(quiz.Questions) {
		return domain.Question{}, false
	}
	return quiz.Questions[st.Index], true
}

func selectOption(quiz domain.Quiz, st State, picked *int) (State, bool) {
	q, ok := current(quiz, st)
	if !ok || q.IsOpen() || st.FeedbackShown || picked == nil {
		return st, false
	}
	option := *picked
	if option < 0 || option >= len(q.Choice.Options) {
		return st, false
	}
	next := st.Clone()
	next.Answers[q.ID] = domain.OptionAnswer(option)
	return next, true
}

func respond(quiz domain.Quiz, st State, text string) (State, bool) {
	q, ok := current(quiz, st)
	if !ok || !q.IsOpen() {
		return st, false
	}
	next := st.Clone()
	next.Answers[q.ID] = domain.TextAnswer(text)
	return next, true
}

func revealFeedback(quiz domain.Quiz, st State) (State, bool) {
	q, ok := current(quiz, st)
	if !ok || q.IsOpen() || st.FeedbackShown {
		return st, false
	}
	if _, answered := st.Answers[q.ID]; !answered {
		return st, false
	}
	next := st.Clone()
	next.FeedbackShown = true
	return next, true
}

func advance(quiz domain.Quiz, st State) (State, bool) {
	q, ok := current(quiz, st)
	if !ok {
		return st, false
	}
	if !q.IsOpen() && !st.FeedbackShown {
		return st, false
	}
	next := st.Clone()
	if q.IsOpen() {
		if _, typed := next.Answers[q.ID]; !typed {
			next.Answers[q.ID] = domain.TextAnswer("")
		}
	}
	next.FeedbackShown = false
	if st.Index >= len(quiz.Questions)-1 {
		next.Phase = PhaseFinished
		return next, true
	}
	next.Index = st.Index + 1
	return next, true
}

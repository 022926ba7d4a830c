package app

import (
	"sync"

	"reading-quiz-service/internal/domain"
)

// ResultsFeed fans out results boards to live viewers, keyed by quiz.
type ResultsFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.ResultsBoard]struct{}
}

func NewResultsFeed() *ResultsFeed {
	return &ResultsFeed{subscribers: make(map[string]map[chan domain.ResultsBoard]struct{})}
}

// Subscribe registers a viewer and sends initial as the first update.
// The caller must invoke cancel to avoid leaks.
func (f *ResultsFeed) Subscribe(quizID string, initial domain.ResultsBoard) (<-chan domain.ResultsBoard, func()) {
	ch := make(chan domain.ResultsBoard, 8)
	ch <- initial

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.ResultsBoard]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[quizID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// Publish delivers board to every viewer of its quiz without blocking.
func (f *ResultsFeed) Publish(board domain.ResultsBoard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[board.QuizID] {
		select {
		case ch <- board:
		default:
			// slow viewer: drop the stale board it has not read yet
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}

// Viewers returns the number of live subscribers for a quiz.
func (f *ResultsFeed) Viewers(quizID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID])
}

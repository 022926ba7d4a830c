package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz is not in the archive.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrSessionNotFound is returned when a quiz-taking session is unknown or expired.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidQuiz wraps structural validation failures.
	ErrInvalidQuiz = errors.New("invalid quiz")
	// ErrNoLink is returned when a quiz could not be turned into a portable link.
	ErrNoLink = errors.New("no shareable link for quiz")
	// ErrInvalidMode is returned when a session is started with an unknown mode.
	ErrInvalidMode = errors.New("invalid session mode")
)

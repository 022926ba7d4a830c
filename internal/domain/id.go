package domain

import "github.com/google/uuid"

// NewID returns a random identifier for quizzes and submissions.
func NewID() string {
	return uuid.NewString()
}

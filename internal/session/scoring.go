package session

import "reading-quiz-service/internal/domain"

// Score counts correct closed answers. Every closed question adds one to
// maxScore whether answered or not; open questions never count.
func Score(quiz domain.Quiz, answers map[string]domain.Answer) (score, maxScore int) {
	for _, q := range quiz.Questions {
		if q.IsOpen() {
			continue
		}
		maxScore++
		answer, ok := answers[q.ID]
		if !ok {
			continue
		}
		if idx, isOption := answer.Option(); isOption && idx == q.Choice.CorrectIndex {
			score++
		}
	}
	return score, maxScore
}

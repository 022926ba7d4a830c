package domain

import "encoding/json"

// wireQuestion is the JSON form shared with portable links and the AI response.
type wireQuestion struct {
	ID                 string   `json:"id"`
	Category           Category `json:"category"`
	Text               string   `json:"text"`
	Options            []string `json:"options,omitempty"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
	IsOpen             bool     `json:"isOpen"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	w := wireQuestion{
		ID:          q.ID,
		Category:    q.Category,
		Text:        q.Text,
		Explanation: q.Explanation,
		IsOpen:      q.IsOpen(),
	}
	if q.Choice != nil {
		idx := q.Choice.CorrectIndex
		w.Options = q.Choice.Options
		w.CorrectAnswerIndex = &idx
	}
	return json.Marshal(w)
}

// UnmarshalJSON ignores options on open questions. A closed question without
// a correct index decodes with CorrectIndex -1 so validation rejects it.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w wireQuestion
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*q = Question{
		ID:          w.ID,
		Category:    w.Category,
		Text:        w.Text,
		Explanation: w.Explanation,
	}
	if w.IsOpen {
		return nil
	}
	choice := &Choice{Options: w.Options, CorrectIndex: -1}
	if w.CorrectAnswerIndex != nil {
		choice.CorrectIndex = *w.CorrectAnswerIndex
	}
	q.Choice = choice
	return nil
}

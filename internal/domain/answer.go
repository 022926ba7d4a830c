package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is either a selected option index or free text.
type Answer struct {
	option int
	text   string
	isText bool
}

// OptionAnswer records a selected option for a closed question.
func OptionAnswer(index int) Answer {
	return Answer{option: index}
}

// TextAnswer records a free-text response for an open question.
func TextAnswer(text string) Answer {
	return Answer{text: text, isText: true}
}

// Option returns the selected index; ok is false for text answers.
func (a Answer) Option() (int, bool) {
	if a.isText {
		return 0, false
	}
	return a.option, true
}

// Text returns the response text; ok is false for option answers.
func (a Answer) Text() (string, bool) {
	if !a.isText {
		return "", false
	}
	return a.text, true
}

func (a Answer) String() string {
	if a.isText {
		return a.text
	}
	return fmt.Sprintf("option %d", a.option)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.isText {
		return json.Marshal(a.text)
	}
	return json.Marshal(a.option)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*a = TextAnswer(text)
		return nil
	}
	var index int
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("answer must be an option index or text: %w", err)
	}
	*a = OptionAnswer(index)
	return nil
}

package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func quizValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return Category(fl.Field().String()).Valid()
		})
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			choice := sl.Current().Interface().(Choice)
			if choice.CorrectIndex >= len(choice.Options) {
				sl.ReportError(choice.CorrectIndex, "CorrectIndex", "CorrectIndex", "ltoptions", "")
			}
		}, Choice{})
		validate = v
	})
	return validate
}

// Validate checks the structural invariants of a quiz: required fields, known
// categories, 2-4 options with an in-range correct index on closed questions,
// and unique question ids.
func Validate(quiz Quiz) error {
	if err := quizValidator().Struct(quiz); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuiz, err)
	}
	seen := make(map[string]struct{}, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("%w: duplicate question id %q", ErrInvalidQuiz, q.ID)
		}
		seen[q.ID] = struct{}{}
	}
	return nil
}

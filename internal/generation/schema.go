package generation

import (
	"fmt"
	"strings"
	"sync"

	"reading-quiz-service/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"github.com/xeipuuv/gojsonschema"
)

func categoryNames() []string {
	cats := domain.Categories()
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	return names
}

// responseSchema is sent to the model so it answers with quiz JSON.
func responseSchema() *genai.Schema {
	question := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":                 {Type: genai.TypeString},
			"category":           {Type: genai.TypeString, Format: "enum", Enum: categoryNames()},
			"text":               {Type: genai.TypeString},
			"options":            {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"correctAnswerIndex": {Type: genai.TypeInteger},
			"explanation":        {Type: genai.TypeString},
			"isOpen":             {Type: genai.TypeBoolean},
		},
		Required: []string{"id", "category", "text", "isOpen"},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":     {Type: genai.TypeString, Description: "The title of the article."},
			"questions": {Type: genai.TypeArray, Items: question},
		},
		Required: []string{"title", "questions"},
	}
}

var (
	checkerOnce sync.Once
	checker     *gojsonschema.Schema
	checkerErr  error
)

// responseChecker mirrors responseSchema as JSON Schema; the model does not
// always honour the schema it was given.
func responseChecker() (*gojsonschema.Schema, error) {
	checkerOnce.Do(func() {
		doc := map[string]any{
			"type":     "object",
			"required": []string{"title", "questions"},
			"properties": map[string]any{
				"title": map[string]any{"type": "string"},
				"questions": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items": map[string]any{
						"type":     "object",
						"required": []string{"category", "text", "isOpen"},
						"properties": map[string]any{
							"id":                 map[string]any{"type": "string"},
							"category":           map[string]any{"type": "string", "enum": categoryNames()},
							"text":               map[string]any{"type": "string", "minLength": 1},
							"options":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
							"correctAnswerIndex": map[string]any{"type": "integer", "minimum": 0},
							"explanation":        map[string]any{"type": "string"},
							"isOpen":             map[string]any{"type": "boolean"},
						},
					},
				},
			},
		}
		checker, checkerErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	})
	return checker, checkerErr
}

func checkResponse(raw []byte) error {
	schema, err := responseChecker()
	if err != nil {
		return fmt.Errorf("compile response schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("response is not JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
}

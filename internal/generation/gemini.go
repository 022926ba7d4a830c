package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"reading-quiz-service/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

const prompt = `You are an expert teacher of reading comprehension for children aged 9-10.
Create an engaging quiz about the text.
Write 8 challenging multiple-choice questions (2 to 4 options each, exactly one correct) and 2 open questions that make the children think.
Tag every question with one category. Write the questions in the language of the text and keep the wording right for children aged 9-10.
Give every question a short unique id.`

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini generates quizzes with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  contentGenerator
	now    func() time.Time
	newID  func() string
}

// NewGemini connects to the Gemini API. Without an API key the gateway is
// still returned, but every call fails with a GenerationError.
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	g := &Gemini{now: time.Now, newID: domain.NewID}
	if apiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set; quiz generation is disabled")
		return g, nil
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = responseSchema()
	g.client = client
	g.model = model
	return g, nil
}

// Close releases the API client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Generate asks the model for a quiz about in.
func (g *Gemini) Generate(ctx context.Context, in Input) (domain.Quiz, error) {
	if err := in.Validate(); err != nil {
		return domain.Quiz{}, err
	}
	if g.model == nil {
		return domain.Quiz{}, fail("gemini client not initialized")
	}

	parts := []genai.Part{genai.Text(prompt)}
	switch in.Kind {
	case KindText:
		parts = append(parts, genai.Text("HERE IS THE TEXT:\n\n"+in.Text))
	case KindURL:
		parts = append(parts, genai.Text("HERE IS THE LINK TO THE TEXT:\n\n"+strings.TrimSpace(in.URL)))
	case KindFile:
		parts = append(parts, genai.Blob{MIMEType: in.MIMEType, Data: in.Data})
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Error().Err(err).Str("kind", string(in.Kind)).Msg("gemini request failed")
		return domain.Quiz{}, &GenerationError{Err: err}
	}
	raw, err := responseText(resp)
	if err != nil {
		return domain.Quiz{}, &GenerationError{Err: err}
	}

	quiz, err := buildQuiz([]byte(raw), in, g.now(), g.newID())
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(raw)).Msg("unusable gemini response")
		return domain.Quiz{}, &GenerationError{Err: err}
	}
	log.Info().Str("quizId", quiz.ID).Int("questions", len(quiz.Questions)).Msg("quiz generated")
	return quiz, nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("gemini returned no text content")
	}
	return b.String(), nil
}

// buildQuiz turns the model's JSON into a validated quiz.
func buildQuiz(raw []byte, in Input, now time.Time, id string) (domain.Quiz, error) {
	if err := checkResponse(raw); err != nil {
		return domain.Quiz{}, err
	}
	var payload struct {
		Title     string            `json:"title"`
		Questions []domain.Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode response: %w", err)
	}

	fullText, ok := in.EmbeddableText()
	if !ok {
		fullText = domain.SourcePlaceholder
	}
	quiz := domain.Quiz{
		ID:        id,
		Title:     strings.TrimSpace(payload.Title),
		FullText:  fullText,
		Questions: normalizeIDs(payload.Questions),
		CreatedAt: domain.Millis(now),
	}
	if err := domain.Validate(quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// normalizeIDs renumbers questions when the model left ids empty or repeated them.
func normalizeIDs(questions []domain.Question) []domain.Question {
	seen := make(map[string]struct{}, len(questions))
	clean := true
	for _, q := range questions {
		if _, dup := seen[q.ID]; dup || strings.TrimSpace(q.ID) == "" {
			clean = false
			break
		}
		seen[q.ID] = struct{}{}
	}
	if clean {
		return questions
	}
	out := make([]domain.Question, len(questions))
	for i, q := range questions {
		q.ID = fmt.Sprintf("q%d", i+1)
		out[i] = q
	}
	return out
}

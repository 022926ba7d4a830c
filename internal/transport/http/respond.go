package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"reading-quiz-service/internal/codec"
	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/generation"

	"github.com/rs/zerolog/log"
)

// Messages shown to teachers and students. None of them is fatal: the user
// can retry or fall back to an exported quiz.
const (
	msgGenerationFailed = "The quiz could not be generated. Check the text or file and try again."
	msgLinkUnreadable   = "This quiz link could not be read. Ask for a new link, or use the exported or printed quiz."
	msgNoLink           = "This quiz cannot be shared as a link. Use export or print instead."
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func errorStatus(err error) (int, errorResponse) {
	var genErr *generation.GenerationError
	var decErr *codec.DecodeError
	switch {
	case errors.As(err, &genErr):
		return http.StatusBadGateway, errorResponse{Error: msgGenerationFailed}
	case errors.As(err, &decErr):
		return http.StatusUnprocessableEntity, errorResponse{Error: msgLinkUnreadable, Reason: string(decErr.Reason)}
	case errors.Is(err, domain.ErrNoLink):
		return http.StatusConflict, errorResponse{Error: msgNoLink}
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, generation.ErrInvalidInput), errors.Is(err, domain.ErrInvalidMode), errors.Is(err, errBadRequest):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

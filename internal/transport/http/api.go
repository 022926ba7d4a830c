package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"reading-quiz-service/internal/app"
	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/export"
	"reading-quiz-service/internal/generation"
	"reading-quiz-service/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var errBadRequest = errors.New("bad request")

// API serves the REST endpoints.
type API struct {
	quizzes  *app.QuizService
	sessions *app.SessionService
	validate *validator.Validate
}

func NewAPI(quizzes *app.QuizService, sessions *app.SessionService) *API {
	return &API{
		quizzes:  quizzes,
		sessions: sessions,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type generateRequest struct {
	Kind     generation.Kind `json:"kind" validate:"required,oneof=text url file"`
	Text     string          `json:"text" validate:"required_if=Kind text"`
	URL      string          `json:"url" validate:"required_if=Kind url,omitempty,url"`
	Data     []byte          `json:"data" validate:"required_if=Kind file"`
	MIMEType string          `json:"mimeType"`
}

type startSessionRequest struct {
	QuizID string       `json:"quizId" validate:"required"`
	Mode   session.Mode `json:"mode" validate:"required,oneof=student preview"`
	Name   string       `json:"name" validate:"max=80"`
}

type linkResponse struct {
	QuizID string `json:"quizId"`
	Link   string `json:"link"`
}

type openLinkResponse struct {
	Quiz  domain.Quiz `json:"quiz"`
	Added bool        `json:"added"`
}

type eventResponse struct {
	Accepted bool            `json:"accepted"`
	Session  app.SessionView `json:"session"`
}

// Request body caps. Generation bodies carry a base64 file.
const (
	maxGenerateBody = generation.MaxFileSize * 2
	maxSessionBody  = 16 << 10
)

func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	if err := a.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// GenerateQuiz accepts JSON ({kind,text,url,data,mimeType}) or a multipart
// upload with a "file" part.
func (a *API) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	in, err := a.generationInput(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	quiz, err := a.quizzes.Generate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (a *API) generationInput(w http.ResponseWriter, r *http.Request) (generation.Input, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req generateRequest
		if err := a.decode(w, r, &req, maxGenerateBody); err != nil {
			return generation.Input{}, err
		}
		switch req.Kind {
		case generation.KindText:
			return generation.TextInput(req.Text), nil
		case generation.KindURL:
			return generation.URLInput(req.URL), nil
		default:
			return generation.FileInput(req.Data, req.MIMEType), nil
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, generation.MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(generation.MaxFileSize); err != nil {
		return generation.Input{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		if text := r.FormValue("text"); text != "" {
			return generation.TextInput(text), nil
		}
		if link := r.FormValue("url"); link != "" {
			return generation.URLInput(link), nil
		}
		return generation.Input{}, fmt.Errorf("%w: missing file", errBadRequest)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, generation.MaxFileSize+1))
	if err != nil {
		return generation.Input{}, fmt.Errorf("%w: read upload: %v", errBadRequest, err)
	}
	return generation.FileInput(data, header.Header.Get("Content-Type")), nil
}

func (a *API) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.quizzes.Quizzes(r.Context()))
}

func (a *API) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.quizzes.Quiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) ShareLink(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	link, err := a.quizzes.ShareLink(r.Context(), quizID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linkResponse{QuizID: quizID, Link: link})
}

func (a *API) ExportQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	format := export.Format(r.URL.Query().Get("format"))
	if format != "" && format != export.FormatSheet && format != export.FormatList {
		writeError(w, r, fmt.Errorf("%w: unknown format %q", errBadRequest, format))
		return
	}
	text, err := a.quizzes.Export(r.Context(), quizID, format)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if format == export.FormatSheet {
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", quizID+".tsv"))
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	_, _ = io.WriteString(w, text)
}

func (a *API) Results(w http.ResponseWriter, r *http.Request) {
	board, err := a.quizzes.Results(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

// OpenLink reads a shared quiz from the d parameter.
func (a *API) OpenLink(w http.ResponseWriter, r *http.Request) {
	quiz, added, err := a.quizzes.OpenLink(r.Context(), linkParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, openLinkResponse{Quiz: quiz, Added: added})
}

func (a *API) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := a.decode(w, r, &req, maxSessionBody); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := a.sessions.Start(r.Context(), req.QuizID, req.Mode, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := a.sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleEvent applies one action. A rejected action is not an error: the
// response carries accepted=false and the unchanged session.
func (a *API) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var ev session.Event
	r.Body = http.MaxBytesReader(w, r.Body, maxSessionBody)
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err))
		return
	}
	view, accepted, err := a.sessions.Handle(r.Context(), chi.URLParam(r, "sessionID"), ev)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Accepted: accepted, Session: view})
}

func (a *API) ResetSession(w http.ResponseWriter, r *http.Request) {
	view, err := a.sessions.Reset(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// linkParam returns the raw d value. Query parsing turns an unescaped '+'
// into a space; the codec reads spaces back as '+'.
func linkParam(r *http.Request) string {
	return r.URL.Query().Get("d")
}

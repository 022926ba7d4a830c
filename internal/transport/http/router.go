package http

import (
	"net/http"
	"time"

	"reading-quiz-service/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions tunes the HTTP surface.
type RouterOptions struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter mounts the REST API and the websocket streams.
func NewRouter(quizzes *app.QuizService, sessions *app.SessionService, opts RouterOptions) http.Handler {
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	api := NewAPI(quizzes, sessions)
	ws := NewWSHandler(quizzes, sessions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(ar chi.Router) {
		ar.Use(middleware.Timeout(opts.RequestTimeout))

		ar.Post("/quizzes", api.GenerateQuiz)
		ar.Get("/quizzes", api.ListQuizzes)
		ar.Get("/quizzes/{quizID}", api.GetQuiz)
		ar.Get("/quizzes/{quizID}/link", api.ShareLink)
		ar.Get("/quizzes/{quizID}/export", api.ExportQuiz)
		ar.Get("/quizzes/{quizID}/results", api.Results)
		ar.Get("/links/open", api.OpenLink)

		ar.Post("/sessions", api.StartSession)
		ar.Get("/sessions/{sessionID}", api.GetSession)
		ar.Post("/sessions/{sessionID}/events", api.HandleEvent)
		ar.Post("/sessions/{sessionID}/reset", api.ResetSession)
	})

	// websockets stay outside the request timeout
	r.Get("/ws/session", ws.ServeSession)
	r.Get("/ws/results", ws.ServeResults)
	return r
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"reading-quiz-service/internal/app"
	"reading-quiz-service/internal/domain"
	"reading-quiz-service/internal/session"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSHandler drives quiz sessions and the live results view over websockets.
type WSHandler struct {
	quizzes  *app.QuizService
	sessions *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(quizzes *app.QuizService, sessions *app.SessionService) *WSHandler {
	return &WSHandler{
		quizzes:  quizzes,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

func errorMessage(err error) outboundMessage[errorPayload] {
	_, body := errorStatus(err)
	return outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: body.Error, Reason: body.Reason}}
}

// ServeSession runs one quiz session for the lifetime of the connection.
// The quiz is named by quizId, or carried inline by a shared link in d.
// Clients send {"type":"event","payload":{...}} or {"type":"reset"} and get
// the session view back after every message.
func (h *WSHandler) ServeSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quizID := q.Get("quizId")
	encoded := q.Get("d")
	mode := session.Mode(q.Get("mode"))
	if mode == "" {
		mode = session.ModeStudent
	}
	if quizID == "" && encoded == "" {
		http.Error(w, "missing quizId or d", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxSessionBody)

	ctx := r.Context()
	var view app.SessionView
	if encoded != "" {
		// the session runs the linked copy, the archive keeps the first one seen
		var quiz domain.Quiz
		quiz, _, err = h.quizzes.OpenLink(ctx, encoded)
		if err != nil {
			_ = conn.WriteJSON(errorMessage(err))
			return
		}
		view, err = h.sessions.StartQuiz(ctx, quiz, mode, q.Get("name"))
	} else {
		view, err = h.sessions.Start(ctx, quizID, mode, q.Get("name"))
	}
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer func() {
		// the request context is gone once the client hangs up
		if err := h.sessions.End(context.WithoutCancel(ctx), view.ID); err != nil {
			log.Warn().Err(err).Str("sessionId", view.ID).Msg("end session failed")
		}
	}()

	if err := conn.WriteJSON(outboundMessage[app.SessionView]{Type: "session", Payload: view}); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.Debug().Err(err).Str("sessionId", view.ID).Msg("ws read ended")
			}
			return
		}

		var reply any
		switch inbound.Type {
		case "event":
			var ev session.Event
			if err := json.Unmarshal(inbound.Payload, &ev); err != nil {
				reply = outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid event payload"}}
				break
			}
			next, accepted, err := h.sessions.Handle(ctx, view.ID, ev)
			if err != nil {
				reply = errorMessage(err)
				break
			}
			view = next
			typ := "session"
			if !accepted {
				typ = "rejected"
			}
			reply = outboundMessage[app.SessionView]{Type: typ, Payload: view}
		case "reset":
			next, err := h.sessions.Reset(ctx, view.ID)
			if err != nil {
				reply = errorMessage(err)
				break
			}
			view = next
			reply = outboundMessage[app.SessionView]{Type: "session", Payload: view}
		default:
			reply = outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn().Err(err).Msg("ws write error")
			return
		}
	}
}

// ServeResults streams the results board of a quiz until the client leaves.
func (h *WSHandler) ServeResults(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	updates, cancel, err := h.quizzes.SubscribeResults(r.Context(), quizID)
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err))
		return
	}
	defer cancel()

	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	// single writer: the reader below only watches for the client going away
	go func() {
		defer close(writerDone)
		for {
			select {
			case board, ok := <-updates:
				if !ok {
					return
				}
				if err := conn.WriteJSON(outboundMessage[any]{Type: "results", Payload: board}); err != nil {
					log.Warn().Err(err).Msg("ws write error")
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(closeSignals)
	<-writerDone
}

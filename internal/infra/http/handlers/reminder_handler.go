package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/reminder"
)

type ReminderSessions interface {
	Open(ctx context.Context, viewer entity.Viewer) *reminder.Session
	Release(viewerID string)
	Session(viewerID string) (*reminder.Session, bool)
}

type ReminderHandler struct {
	sessions  ReminderSessions
	heartbeat time.Duration
	logger    zerolog.Logger
}

func NewReminderHandler(sessions ReminderSessions, logger zerolog.Logger) *ReminderHandler {
	return &ReminderHandler{
		sessions:  sessions,
		heartbeat: 25 * time.Second,
		logger:    logger.With().Str("handler", "reminders").Logger(),
	}
}

type AckResponse struct {
	Next *reminder.Event `json:"next"`
}

// Stream (GET /reminders/stream) mantém a sessão de lembretes aberta enquanto
// a conexão existir. Os alertas pendentes são reenviados ao conectar.
func (h *ReminderHandler) Stream(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "streaming unsupported"})
		return
	}

	session := h.sessions.Open(r.Context(), v)
	defer h.sessions.Release(v.ID)

	pending, events, unsubscribe := session.Subscribe()
	defer unsubscribe()

	middleware.RecordStreamOpened()
	defer middleware.RecordStreamClosed()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	for _, ev := range pending {
		if err := writeEvent(w, ev); err != nil {
			return
		}
	}
	flusher.Flush()

	h.logger.Debug().Str("viewer_id", v.ID).Msg("reminder stream opened")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug().Str("viewer_id", v.ID).Msg("reminder stream closed by client")
			return
		case ev, open := <-events:
			if !open {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, ev reminder.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s\nevent: reminder\ndata: %s\n\n", ev.ID, data)
	return err
}

// List (GET /reminders) devolve a fila de alertas; o primeiro é o atual.
func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	session, ok := h.sessions.Session(v.ID)
	if !ok {
		writeJSON(w, http.StatusOK, []reminder.Event{})
		return
	}
	writeJSON(w, http.StatusOK, session.Inbox().Pending())
}

// Ack (POST /reminders/{id}/ack) dispensa o alerta e devolve o próximo.
func (h *ReminderHandler) Ack(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	session, ok := h.sessions.Session(v.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "No active reminder session", Code: "NO_SESSION"})
		return
	}

	next, hasNext, err := session.Inbox().Ack(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, reminder.ErrAlertNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Reminder not found", Code: "REMINDER_NOT_FOUND"})
			return
		}
		writeError(w, h.logger, err)
		return
	}

	resp := AckResponse{}
	if hasNext {
		resp.Next = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

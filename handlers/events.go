// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sse"

	"github.com/aliabbas6622/LockItIn-Hackathon/middleware"
	"github.com/aliabbas6622/LockItIn-Hackathon/models"
	"github.com/aliabbas6622/LockItIn-Hackathon/session"
)

type EventsHandler struct {
	engine *session.Engine
}

func NewEventsHandler(engine *session.Engine) *EventsHandler {
	return &EventsHandler{engine: engine}
}

// Stream handles GET /sessions/{id}/events
// Joins the session's room and streams its activity as server-sent events
// until the client disconnects. Joining broadcasts a joined event; activity
// published before the subscription is not replayed.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.ErrorResponse(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	listener, err := h.engine.Join(r.Context(), sessionID, r.URL.Query().Get("name"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	defer h.engine.Leave(listener)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, ok := <-listener.Events():
			if !ok {
				// Engine shut down.
				return
			}
			err := sse.Encode(w, sse.Event{
				Id:    strconv.FormatUint(ev.Sequence, 10),
				Event: ev.Kind,
				Data:  ev,
			})
			if err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// Typing handles POST /sessions/{id}/typing
// Fans a typing notification out to the room. Rate limiting is the client's
// responsibility (the UI throttles to roughly one per two seconds).
func (h *EventsHandler) Typing(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.TypingRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := h.engine.Typing(r.Context(), sessionID, req.Name); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

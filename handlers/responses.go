// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/aliabbas6622/LockItIn-Hackathon/middleware"
	"github.com/aliabbas6622/LockItIn-Hackathon/models"
	"github.com/aliabbas6622/LockItIn-Hackathon/session"
)

type ResponseHandler struct {
	engine *session.Engine
}

func NewResponseHandler(engine *session.Engine) *ResponseHandler {
	return &ResponseHandler{engine: engine}
}

// SubmitResponses handles POST /sessions/{id}/responses
// The write and the room notification are sequenced so no live listener can
// observe the response event before the data is queryable.
func (h *ResponseHandler) SubmitResponses(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.SubmitResponsesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	participantID, err := h.engine.SubmitResponses(r.Context(), sessionID, req.Name, req.Answers)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitResponsesResponse{
		ParticipantID: participantID,
	})
}

// GetParticipants handles GET /sessions/{id}/participants
func (h *ResponseHandler) GetParticipants(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	participants, err := h.engine.Participants(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, participants)
}

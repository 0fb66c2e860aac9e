// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/aliabbas6622/LockItIn-Hackathon/middleware"
	"github.com/aliabbas6622/LockItIn-Hackathon/models"
	"github.com/aliabbas6622/LockItIn-Hackathon/session"
)

type SessionHandler struct {
	engine *session.Engine
}

func NewSessionHandler(engine *session.Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	sess, err := h.engine.Create(r.Context(), req.Topic)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{ID: sess.ID})
}

// GetSession handles GET /sessions/{id}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	detail, err := h.engine.Get(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, detail)
}

// GenerateQuestions handles POST /sessions/{id}/questions/generate
// Idempotent: a session that already has its batch returns it unchanged.
func (h *SessionHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	questions, err := h.engine.RequestQuestions(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, questions)
}

// AddQuestions handles POST /sessions/{id}/questions (manual entry)
func (h *SessionHandler) AddQuestions(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	var req models.AddQuestionsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	questions, err := h.engine.AddQuestions(r.Context(), sessionID, req.Questions)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, questions)
}

// GetQuestions handles GET /sessions/{id}/questions
func (h *SessionHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	questions, err := h.engine.Questions(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, questions)
}

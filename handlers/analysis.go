// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/aliabbas6622/LockItIn-Hackathon/middleware"
	"github.com/aliabbas6622/LockItIn-Hackathon/session"
)

type AnalysisHandler struct {
	engine *session.Engine
}

func NewAnalysisHandler(engine *session.Engine) *AnalysisHandler {
	return &AnalysisHandler{engine: engine}
}

// RequestAnalysis handles POST /sessions/{id}/analysis
// Idempotent: a completed session returns its stored verdict; concurrent
// requests share a single analysis execution.
func (h *AnalysisHandler) RequestAnalysis(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	verdict, err := h.engine.RequestAnalysis(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, verdict)
}

// GetAnalysis handles GET /sessions/{id}/analysis
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return
	}

	verdict, err := h.engine.Analysis(r.Context(), sessionID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, verdict)
}

// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/aliabbas6622/LockItIn-Hackathon/handlers"
	"github.com/aliabbas6622/LockItIn-Hackathon/middleware"
	"github.com/aliabbas6622/LockItIn-Hackathon/session"
)

func NewRouter(engine *session.Engine) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(engine)
	responseHandler := handlers.NewResponseHandler(engine)
	analysisHandler := handlers.NewAnalysisHandler(engine)
	eventsHandler := handlers.NewEventsHandler(engine)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetSession))
	mux.HandleFunc("POST /sessions/{id}/questions/generate", middleware.WithLogging(sessionHandler.GenerateQuestions))
	mux.HandleFunc("POST /sessions/{id}/questions", middleware.WithLogging(sessionHandler.AddQuestions))
	mux.HandleFunc("GET /sessions/{id}/questions", middleware.WithLogging(sessionHandler.GetQuestions))

	// Responses
	mux.HandleFunc("POST /sessions/{id}/responses", middleware.WithLogging(responseHandler.SubmitResponses))
	mux.HandleFunc("GET /sessions/{id}/participants", middleware.WithLogging(responseHandler.GetParticipants))

	// Analysis
	mux.HandleFunc("POST /sessions/{id}/analysis", middleware.WithLogging(analysisHandler.RequestAnalysis))
	mux.HandleFunc("GET /sessions/{id}/analysis", middleware.WithLogging(analysisHandler.GetAnalysis))

	// Live activity (no logging wrapper on the stream: it holds the
	// connection open for its whole lifetime)
	mux.HandleFunc("GET /sessions/{id}/events", eventsHandler.Stream)
	mux.HandleFunc("POST /sessions/{id}/typing", middleware.WithLogging(eventsHandler.Typing))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("LockItIn API v1"))
	})

	return mux
}

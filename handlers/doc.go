// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the LockItIn API.

# Handler Types

Each handler is a struct holding the session engine:

  - SessionHandler: session creation, retrieval, question generation and entry
  - ResponseHandler: participant response submission and listing
  - AnalysisHandler: verdict synthesis and retrieval
  - EventsHandler: live activity stream (SSE) and typing notifications

Handlers are created via constructor functions that accept *session.Engine:

	sessionHandler := handlers.NewSessionHandler(engine)

# Session Lifecycle

Sessions progress through three states: draft → collecting → completed

	POST /sessions                          → CreateSession
	POST /sessions/{id}/questions/generate  → GenerateQuestions (draft→collecting)
	POST /sessions/{id}/questions           → AddQuestions (manual, draft only)
	POST /sessions/{id}/responses           → SubmitResponses
	POST /sessions/{id}/analysis            → RequestAnalysis (collecting→completed)

Generation and analysis are idempotent: repeating them returns the stored
batch or verdict, and concurrent triggers share a single execution.

# Live Channel

	GET  /sessions/{id}/events → Stream (text/event-stream)
	POST /sessions/{id}/typing → Typing

The stream carries joined, typing, and response events in per-session publish
order, each with a monotonic sequence id.
*/
package handlers

// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the LockItIn API server.

LockItIn helps a group converge on a decision: one person poses a question,
the server derives clarifying sub-questions with an AI reasoning model,
participants answer them in real time, and a single synthesized verdict comes
out the other end.

# Starting the Server

The server requires environment variables, a .env file, or CLI flags:

	DATABASE_URL=lockitin.db OPENAI_API_KEY=sk-... go run main.go

Or with flags:

	go run main.go -p 3000 -d lockitin.db --openai-key sk-...

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - OPENAI_API_KEY (--openai-key): API key for the synthesis gateway

Optional settings:

  - PORT (-p): Server port (default: 3000)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - OPENAI_MODEL, OPENAI_BASE_URL, GATEWAY_TIMEOUT_SECONDS

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (sessions, responses, analysis, events)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, error mapping
  - models: Request/response and domain types
  - session: Lifecycle engine, single-flight synthesis coordination
  - room: Per-session live event broadcasting
  - synthesis: OpenAI-compatible structured-output gateway
  - store: SQL persistence (SQLite or PostgreSQL)
  - db: Schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main

// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

# Middleware

  - WithLogging: request/response logging with duration
  - CORS: cross-origin headers and preflight handling

# JSON Helpers

  - JSONResponse: write a JSON body with status code
  - ErrorResponse: write a structured error body
  - WriteError: map domain sentinel errors to HTTP statuses
  - ParseJSONBody: decode a request body

# Error mapping

WriteError translates the domain taxonomy:

	session.ErrInvalidInput → 400
	session.ErrNotFound     → 404
	session.ErrConflict     → 409
	synthesis.ErrInvalid    → 502
	synthesis.ErrUpstream   → 502
	synthesis.ErrTimeout    → 504
	anything else           → 500
*/
package middleware

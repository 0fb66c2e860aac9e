// Copyright (c) 2025 Ali Abbas.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP route table.

NewRouter wires all handlers onto a stdlib ServeMux using Go 1.22+ method
patterns:

	mux := router.NewRouter(engine)
	http.ListenAndServe(addr, middleware.CORS(mux))

All routes are wrapped with request logging except the event stream, which
holds its connection open for the lifetime of the subscription.
*/
package router

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status, duration_ms).

# Sessions

Protect dashboard routes:

	mux.HandleFunc("GET /admin", middleware.RequireSession(store, handler))

The session id is read from the SessionCookie cookie. Missing or expired
sessions redirect to /login, or get a JSON 401 under /api/. Handlers read the
session with:

	sess, ok := middleware.SessionFromContext(r.Context())

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusForbidden, "message")

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Handles X-Forwarded-For and X-Real-IP. Used in request logs.
*/
package middleware

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms).

# Session Gate

RequireSession runs an Authenticator before the handler and stores the
identity in the request context:

	guarded := middleware.RequireSession(guard)
	mux.HandleFunc("GET /api/sheets", middleware.WithLogging(guarded(h.List)))

	user, _ := middleware.UserFrom(r.Context())

# CORS Middleware

Allow credentialed requests from the configured browser origins only:

	server := http.Server{
		Handler: middleware.CORS(cfg.AllowedOrigins())(mux),
	}

# JSON Helpers

Write JSON responses:

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, err) // status and code from apperr.Classify

Parse JSON request bodies:

	var req models.AddVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
*/
package middleware

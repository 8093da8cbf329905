// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/models"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Info("request started",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", GetClientIP(r),
		)

		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)

		slog.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response with the code implied by the
// status.
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    string(apperr.FromStatus(statusCode)),
		Message: message,
	})
}

// WriteError classifies err and writes it as a JSON error response. Storage
// failures are logged with the underlying cause; the client only sees the
// generic message.
func WriteError(w http.ResponseWriter, err error) {
	e := apperr.Classify(err)
	if e == nil {
		return
	}
	status := e.Code.Status()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "code", e.Code, "error", err)
	}
	JSONResponse(w, status, models.ErrorResponse{
		Error:     http.StatusText(status),
		Code:      string(e.Code),
		Message:   e.Message,
		Retryable: e.Code.Retryable(),
	})
}

// ErrInvalidJSON is returned by ParseJSONBody for malformed bodies.
var ErrInvalidJSON = errors.New("invalid JSON")

func init() {
	apperr.Register(ErrInvalidJSON, apperr.InvalidInput, "Invalid JSON")
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(ErrInvalidJSON, err)
	}
	return nil
}

// Authenticator resolves the caller behind a request.
type Authenticator interface {
	Authenticate(w http.ResponseWriter, r *http.Request) (models.Identity, error)
}

type userKey struct{}

// WithUser returns a copy of ctx carrying the authenticated identity.
func WithUser(ctx context.Context, user models.Identity) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the identity stored by RequireSession.
func UserFrom(ctx context.Context) (models.Identity, bool) {
	user, ok := ctx.Value(userKey{}).(models.Identity)
	return user, ok
}

// RequireSession rejects requests without a live session before they reach
// next.
func RequireSession(a Authenticator) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := a.Authenticate(w, r)
			if err != nil {
				WriteError(w, err)
				return
			}
			next(w, r.WithContext(WithUser(r.Context(), user)))
		}
	}
}

// CORS allows credentialed cross-origin requests from the given origins.
// Requests from other origins get no CORS headers.
func CORS(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimRight(r.Header.Get("Origin"), "/")
			allowed := origin != "" && slices.Contains(origins, origin)

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				if allowed {
					w.WriteHeader(http.StatusNoContent)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}

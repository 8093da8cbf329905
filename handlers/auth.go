// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/danielhkuo/applicant-reviewer/auth"
	"github.com/danielhkuo/applicant-reviewer/cliparse"
	"github.com/danielhkuo/applicant-reviewer/middleware"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/session"
)

// StateCookieName holds the OAuth state between the redirect and callback.
const StateCookieName = "applicant-reviewer-oauth-state"

const stateTTL = 10 * time.Minute

type AuthHandler struct {
	guard    *session.Guard
	provider session.Provider
	cfg      cliparse.Config
}

func NewAuthHandler(guard *session.Guard, provider session.Provider, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{guard: guard, provider: provider, cfg: cfg}
}

// Status handles GET /auth/status
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, err := h.guard.Refresh(w, r)
	if errors.Is(err, session.ErrNotAuthenticated) {
		middleware.JSONResponse(w, http.StatusOK, models.AuthStatusResponse{Authenticated: false})
		return
	}
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AuthStatusResponse{
		Authenticated: true,
		User:          &sess.User,
		ExpiresAt:     &sess.ExpiresAt,
	})
}

// Login handles GET /auth/google
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := auth.SignState(h.cfg.SessionSecret)
	if err != nil {
		slog.Error("failed to sign oauth state", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

// Callback handles GET /auth/google/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var cookieState string
	if c, err := r.Cookie(StateCookieName); err == nil {
		cookieState = c.Value
	}
	http.SetCookie(w, &http.Cookie{
		Name:     StateCookieName,
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	if e := q.Get("error"); e != "" {
		slog.Warn("identity provider returned an error", "error", e)
		h.redirectClient(w, r, "error", "access_denied")
		return
	}

	if err := auth.VerifyState(q.Get("state"), cookieState, h.cfg.SessionSecret); err != nil {
		slog.Warn("oauth state mismatch", "remote", middleware.GetClientIP(r))
		h.redirectClient(w, r, "error", "invalid_state")
		return
	}

	user, err := h.provider.Identify(r.Context(), q.Get("code"))
	if err != nil {
		slog.Error("failed to identify user", "error", err)
		h.redirectClient(w, r, "error", "user_data_missing")
		return
	}

	if _, err := h.guard.Login(r.Context(), w, user); err != nil {
		if errors.Is(err, session.ErrAccessDenied) {
			h.redirectClient(w, r, "error", "access_denied")
			return
		}
		slog.Error("failed to start session", "error", err)
		h.redirectClient(w, r, "error", "session_failed")
		return
	}

	h.redirectClient(w, r, "auth", "success")
}

// Logout handles GET /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.guard.Peek(r)
	if err := h.guard.Logout(w, r); err != nil {
		slog.Error("failed to delete session", "error", err)
	}
	if !ok {
		middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "No session to clear"})
		return
	}

	slog.Info("session revoked", "email", sess.User.Email)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, err := h.guard.Refresh(w, r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.RefreshResponse{
		Message:   "Session refreshed successfully",
		User:      sess.User,
		ExpiresAt: sess.ExpiresAt,
	})
}

func (h *AuthHandler) redirectClient(w http.ResponseWriter, r *http.Request, key, value string) {
	target := h.cfg.ClientURL
	if target == "" {
		target = "/"
	}
	u, err := url.Parse(target)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	http.Redirect(w, r, u.String(), http.StatusFound)
}

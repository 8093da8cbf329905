// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/auth"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/store"
)

// CookieName is the session cookie.
const CookieName = "applicant-reviewer-session"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAccessDenied     = errors.New("access denied")
)

func init() {
	apperr.Register(ErrNotAuthenticated, apperr.NotAuthenticated, "Not authenticated")
	apperr.Register(ErrAccessDenied, apperr.AccessDenied, "Access denied. Only the authorized reviewer can sign in.")
}

// Store is the session persistence the guard needs.
type Store interface {
	CreateSession(ctx context.Context, sess store.Session) error
	GetSession(ctx context.Context, tokenHash string) (store.Session, error)
	ExtendSession(ctx context.Context, tokenHash string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, tokenHash string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
	CountSessions(ctx context.Context) (int, error)
}

type Config struct {
	AllowedEmail string
	Secret       string
	TTL          time.Duration
	Secure       bool
}

// Guard authorizes requests against server-side sessions. A session is
// created only for the allow-listed email, slides its expiry on every
// successful check and is never revived once expired.
type Guard struct {
	store  Store
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
}

func NewGuard(st Store, cfg Config, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		store:  st,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		logger: logger,
	}
}

// Allowed reports whether email is the configured reviewer.
func (g *Guard) Allowed(email string) bool {
	allowed := strings.TrimSpace(g.cfg.AllowedEmail)
	return allowed != "" && strings.EqualFold(strings.TrimSpace(email), allowed)
}

// Login starts a session for a verified identity and sets the cookie.
// Any identity other than the allow-listed one gets ErrAccessDenied and no
// session.
func (g *Guard) Login(ctx context.Context, w http.ResponseWriter, user models.Identity) (store.Session, error) {
	if !g.Allowed(user.Email) {
		g.logger.Warn("login rejected", "email", user.Email)
		return store.Session{}, ErrAccessDenied
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return store.Session{}, err
	}
	hash, err := auth.HashSessionToken(token, g.cfg.Secret)
	if err != nil {
		return store.Session{}, err
	}

	now := g.now()
	sess := store.Session{
		TokenHash: hash,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(g.cfg.TTL),
	}
	if err := g.store.CreateSession(ctx, sess); err != nil {
		return store.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	g.setCookie(w, token, sess.ExpiresAt)
	g.logger.Info("session created", "email", user.Email, "expires_at", sess.ExpiresAt)
	return sess, nil
}

// Refresh validates the request's session and slides its expiry. Missing,
// unknown and expired sessions are ErrNotAuthenticated; expired ones are
// deleted on sight.
func (g *Guard) Refresh(w http.ResponseWriter, r *http.Request) (store.Session, error) {
	token, hash, ok := g.tokenHash(r)
	if !ok {
		return store.Session{}, ErrNotAuthenticated
	}
	ctx := r.Context()

	sess, err := g.store.GetSession(ctx, hash)
	if errors.Is(err, store.ErrSessionNotFound) {
		g.clearCookie(w)
		return store.Session{}, ErrNotAuthenticated
	}
	if err != nil {
		return store.Session{}, err
	}

	now := g.now()
	if sess.Expired(now) {
		if err := g.store.DeleteSession(ctx, hash); err != nil {
			g.logger.Warn("failed to delete expired session", "error", err)
		}
		g.clearCookie(w)
		return store.Session{}, ErrNotAuthenticated
	}

	sess.ExpiresAt = now.Add(g.cfg.TTL)
	if err := g.store.ExtendSession(ctx, hash, sess.ExpiresAt); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			g.clearCookie(w)
			return store.Session{}, ErrNotAuthenticated
		}
		return store.Session{}, err
	}

	g.setCookie(w, token, sess.ExpiresAt)
	return sess, nil
}

// Authenticate is Refresh reduced to the caller's identity.
func (g *Guard) Authenticate(w http.ResponseWriter, r *http.Request) (models.Identity, error) {
	sess, err := g.Refresh(w, r)
	if err != nil {
		return models.Identity{}, err
	}
	return sess.User, nil
}

// Peek returns the request's live session without extending it.
func (g *Guard) Peek(r *http.Request) (store.Session, bool) {
	_, hash, ok := g.tokenHash(r)
	if !ok {
		return store.Session{}, false
	}
	sess, err := g.store.GetSession(r.Context(), hash)
	if err != nil || sess.Expired(g.now()) {
		return store.Session{}, false
	}
	return sess, true
}

// Logout deletes the session server-side and clears the cookie.
func (g *Guard) Logout(w http.ResponseWriter, r *http.Request) error {
	defer g.clearCookie(w)
	_, hash, ok := g.tokenHash(r)
	if !ok {
		return nil
	}
	return g.store.DeleteSession(r.Context(), hash)
}

// Sweep removes expired sessions every interval until ctx is done.
func (g *Guard) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes expired sessions and logs what is left.
func (g *Guard) SweepOnce(ctx context.Context) {
	removed, err := g.store.DeleteExpiredSessions(ctx, g.now())
	if err != nil {
		g.logger.Error("failed to sweep sessions", "error", err)
		return
	}
	active, err := g.store.CountSessions(ctx)
	if err != nil {
		g.logger.Error("failed to count sessions", "error", err)
		return
	}
	g.logger.Info("session sweep",
		"removed", removed,
		"active", humanize.Comma(int64(active)),
	)
}

func (g *Guard) tokenHash(r *http.Request) (token, hash string, ok bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", "", false
	}
	hash, err = auth.HashSessionToken(c.Value, g.cfg.Secret)
	if err != nil {
		return "", "", false
	}
	return c.Value, hash, true
}

func (g *Guard) setCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   g.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (g *Guard) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   g.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

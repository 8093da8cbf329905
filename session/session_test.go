// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/cliparse"
	"github.com/danielhkuo/applicant-reviewer/db"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/store"
	"github.com/danielhkuo/applicant-reviewer/testutil"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time         { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupGuard(t *testing.T) (*Guard, *store.Store, *clock) {
	t.Helper()
	st := store.New(testutil.SetupTestDB(t), db.SQLite)
	g := NewGuard(st, Config{
		AllowedEmail: "Reviewer@Example.com",
		Secret:       "test-secret",
		TTL:          time.Hour,
	}, nil)
	c := &clock{t: time.Now().UTC().Truncate(time.Second)}
	g.now = c.now
	return g, st, c
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	if c != nil {
		r.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return r
}

func login(t *testing.T, g *Guard) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	if _, err := g.Login(context.Background(), w, models.Identity{Email: "reviewer@example.com", Name: "Rev"}); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return sessionCookie(t, w)
}

func TestLogin_AllowList(t *testing.T) {
	g, st, _ := setupGuard(t)

	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"exact", "Reviewer@Example.com", nil},
		{"case and space insensitive", "  reviewer@example.com ", nil},
		{"other identity", "intruder@example.com", ErrAccessDenied},
		{"empty", "", ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, err := g.Login(context.Background(), w, models.Identity{Email: tt.email})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(w.Result().Cookies()) != 0 {
					t.Error("rejected login must not set a cookie")
				}
				if !apperr.Is(err, apperr.AccessDenied) {
					t.Errorf("expected AccessDenied classification, got %v", err)
				}
			}
		})
	}

	if n, _ := st.CountSessions(context.Background()); n != 2 {
		t.Errorf("expected 2 sessions, got %d", n)
	}
}

func TestRefresh_Slides(t *testing.T) {
	g, _, c := setupGuard(t)
	cookie := login(t, g)
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	c.advance(50 * time.Minute)
	w := httptest.NewRecorder()
	sess, err := g.Refresh(w, requestWith(cookie))
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if !sess.ExpiresAt.Equal(c.t.Add(time.Hour)) {
		t.Errorf("expiry = %v, want %v", sess.ExpiresAt, c.t.Add(time.Hour))
	}

	// Past the original expiry but inside the slid one
	c.advance(50 * time.Minute)
	if _, err := g.Refresh(httptest.NewRecorder(), requestWith(cookie)); err != nil {
		t.Fatalf("slid session should still be valid: %v", err)
	}
}

func TestRefresh_ExpiredIsNotRevived(t *testing.T) {
	g, st, c := setupGuard(t)
	cookie := login(t, g)

	c.advance(61 * time.Minute)
	w := httptest.NewRecorder()
	if _, err := g.Refresh(w, requestWith(cookie)); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if n, _ := st.CountSessions(context.Background()); n != 0 {
		t.Errorf("expired session should be deleted, %d left", n)
	}

	// Going back in time does not bring it back
	c.advance(-30 * time.Minute)
	if _, err := g.Refresh(httptest.NewRecorder(), requestWith(cookie)); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expired session revived: %v", err)
	}
}

func TestRefresh_MissingOrUnknown(t *testing.T) {
	g, _, _ := setupGuard(t)

	tests := []struct {
		name   string
		cookie *http.Cookie
	}{
		{"no cookie", nil},
		{"unknown token", &http.Cookie{Name: CookieName, Value: strings.Repeat("a", 43)}},
		{"malformed token", &http.Cookie{Name: CookieName, Value: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Authenticate(httptest.NewRecorder(), requestWith(tt.cookie))
			if !apperr.Is(err, apperr.NotAuthenticated) {
				t.Errorf("expected NotAuthenticated, got %v", err)
			}
		})
	}
}

func TestLogout_InvalidatesServerSide(t *testing.T) {
	g, _, _ := setupGuard(t)
	cookie := login(t, g)

	w := httptest.NewRecorder()
	if err := g.Logout(w, requestWith(cookie)); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if c := sessionCookie(t, w); c.MaxAge >= 0 {
		t.Errorf("logout should expire the cookie, MaxAge = %d", c.MaxAge)
	}

	// Replaying the old cookie fails
	if _, err := g.Refresh(httptest.NewRecorder(), requestWith(cookie)); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated after logout, got %v", err)
	}
	if _, ok := g.Peek(requestWith(cookie)); ok {
		t.Error("Peek() should not find a logged out session")
	}
}

func TestPeekDoesNotExtend(t *testing.T) {
	g, st, c := setupGuard(t)
	cookie := login(t, g)
	c.advance(10 * time.Minute)

	sess, ok := g.Peek(requestWith(cookie))
	if !ok {
		t.Fatal("Peek() should find the session")
	}
	stored, err := st.GetSession(context.Background(), sess.TokenHash)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.ExpiresAt.Equal(stored.CreatedAt.Add(time.Hour)) {
		t.Errorf("Peek() extended the session to %v", stored.ExpiresAt)
	}
}

func TestSweepOnce(t *testing.T) {
	g, st, c := setupGuard(t)
	login(t, g)
	c.advance(2 * time.Hour)
	login(t, g)

	g.SweepOnce(context.Background())
	if n, _ := st.CountSessions(context.Background()); n != 1 {
		t.Errorf("expected 1 live session after sweep, got %d", n)
	}
}

func TestSweepStopsOnCancel(t *testing.T) {
	g, _, _ := setupGuard(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		g.Sweep(ctx, time.Millisecond)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Sweep() did not stop after cancel")
	}
}

func TestGoogleProvider(t *testing.T) {
	verified := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			if r.FormValue("code") != "good-code" {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "provider-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})
		case "/oauth2/v2/userinfo":
			json.NewEncoder(w).Encode(map[string]any{
				"email":          "reviewer@example.com",
				"verified_email": verified,
				"name":           "Rev",
				"picture":        "https://example.com/p.png",
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := cliparse.Config{
		GoogleClientID:     "id",
		GoogleClientSecret: "secret",
		GoogleCallbackURL:  "http://localhost/auth/google/callback",
	}
	p := NewGoogleProvider(cfg, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client())).
		WithEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/auth",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		})

	u := p.AuthCodeURL("state-123")
	if !strings.Contains(u, "state=state-123") || !strings.HasPrefix(u, srv.URL+"/auth") {
		t.Errorf("unexpected auth url %s", u)
	}

	id, err := p.Identify(context.Background(), "good-code")
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if id.Email != "reviewer@example.com" || id.Name != "Rev" {
		t.Errorf("Identify() = %+v", id)
	}

	if _, err := p.Identify(context.Background(), "bad-code"); err == nil {
		t.Error("expected exchange error for bad code")
	}

	verified = false
	if _, err := p.Identify(context.Background(), "good-code"); !errors.Is(err, ErrUnverifiedEmail) {
		t.Errorf("expected ErrUnverifiedEmail, got %v", err)
	}
}

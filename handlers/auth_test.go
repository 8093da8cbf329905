// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/danielhkuo/applicant-reviewer/db"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/session"
	"github.com/danielhkuo/applicant-reviewer/store"
	"github.com/danielhkuo/applicant-reviewer/testutil"
)

type fakeProvider struct {
	identities map[string]models.Identity
}

func (p fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (p fakeProvider) Identify(ctx context.Context, code string) (models.Identity, error) {
	id, ok := p.identities[code]
	if !ok {
		return models.Identity{}, errors.New("invalid_grant")
	}
	return id, nil
}

func setupAuth(t *testing.T) (*AuthHandler, *store.Store) {
	t.Helper()
	cfg := testutil.GetTestConfig()
	st := store.New(testutil.SetupTestDB(t), db.SQLite)
	guard := session.NewGuard(st, session.Config{
		AllowedEmail: cfg.AllowedEmail,
		Secret:       cfg.SessionSecret,
		TTL:          cfg.SessionTTL,
	}, nil)
	provider := fakeProvider{identities: map[string]models.Identity{
		"reviewer-code": {Email: "reviewer@example.com", Name: "Reviewer"},
		"intruder-code": {Email: "intruder@example.com", Name: "Intruder"},
	}}
	return NewAuthHandler(guard, provider, cfg), st
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// startLogin runs GET /auth/google and returns the state and its cookie.
func startLogin(t *testing.T, h *AuthHandler) (string, *http.Cookie) {
	t.Helper()
	w := httptest.NewRecorder()
	h.Login(w, testutil.MakeRequest("GET", "/auth/google", nil, nil))
	testutil.AssertStatus(t, w, http.StatusFound)

	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Bad redirect: %v", err)
	}
	c := findCookie(w, StateCookieName)
	if c == nil {
		t.Fatal("Expected state cookie")
	}
	return loc.Query().Get("state"), c
}

func callback(h *AuthHandler, state, code string, stateCookie *http.Cookie) *httptest.ResponseRecorder {
	q := url.Values{"state": {state}, "code": {code}}
	req := testutil.MakeRequest("GET", "/auth/google/callback?"+q.Encode(), nil, nil)
	if stateCookie != nil {
		req.AddCookie(&http.Cookie{Name: stateCookie.Name, Value: stateCookie.Value})
	}
	w := httptest.NewRecorder()
	h.Callback(w, req)
	return w
}

func redirectQuery(t *testing.T, w *httptest.ResponseRecorder) url.Values {
	t.Helper()
	testutil.AssertStatus(t, w, http.StatusFound)
	loc, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Bad redirect: %v", err)
	}
	if loc.Host != "localhost:3000" {
		t.Errorf("Expected redirect to client, got %s", loc)
	}
	return loc.Query()
}

func TestCallback(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		tamperState bool
		noCookie    bool
		wantKey     string
		wantValue   string
		wantSession bool
	}{
		{"allowed reviewer", "reviewer-code", false, false, "auth", "success", true},
		{"other identity", "intruder-code", false, false, "error", "access_denied", false},
		{"bad code", "bogus", false, false, "error", "user_data_missing", false},
		{"forged state", "reviewer-code", true, false, "error", "invalid_state", false},
		{"missing state cookie", "reviewer-code", false, true, "error", "invalid_state", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := setupAuth(t)
			state, cookie := startLogin(t, h)
			if tt.tamperState {
				state = "forged." + state
			}
			if tt.noCookie {
				cookie = nil
			}

			w := callback(h, state, tt.code, cookie)
			q := redirectQuery(t, w)
			if q.Get(tt.wantKey) != tt.wantValue {
				t.Errorf("Expected %s=%s, got %v", tt.wantKey, tt.wantValue, q)
			}

			hasCookie := findCookie(w, session.CookieName) != nil
			if hasCookie != tt.wantSession {
				t.Errorf("Expected session cookie %v, got %v", tt.wantSession, hasCookie)
			}
			n, _ := st.CountSessions(context.Background())
			if (n == 1) != tt.wantSession {
				t.Errorf("Expected session row %v, found %d", tt.wantSession, n)
			}
		})
	}
}

func TestCallback_ProviderError(t *testing.T) {
	h, _ := setupAuth(t)
	req := testutil.MakeRequest("GET", "/auth/google/callback?error=access_denied", nil, nil)
	w := httptest.NewRecorder()
	h.Callback(w, req)

	if q := redirectQuery(t, w); q.Get("error") != "access_denied" {
		t.Errorf("Expected error=access_denied, got %v", q)
	}
}

func signIn(t *testing.T, h *AuthHandler) *http.Cookie {
	t.Helper()
	state, cookie := startLogin(t, h)
	w := callback(h, state, "reviewer-code", cookie)
	c := findCookie(w, session.CookieName)
	if c == nil {
		t.Fatal("Expected session cookie after sign-in")
	}
	return c
}

func withSession(req *http.Request, c *http.Cookie) *http.Request {
	if c != nil {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func TestStatus(t *testing.T) {
	h, _ := setupAuth(t)

	w := httptest.NewRecorder()
	h.Status(w, testutil.MakeRequest("GET", "/auth/status", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.AuthStatusResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Authenticated || resp.User != nil {
		t.Errorf("Expected unauthenticated status, got %+v", resp)
	}

	c := signIn(t, h)
	w = httptest.NewRecorder()
	h.Status(w, withSession(testutil.MakeRequest("GET", "/auth/status", nil, nil), c))
	resp = models.AuthStatusResponse{}
	testutil.AssertJSON(t, w, &resp)
	if !resp.Authenticated || resp.User == nil || resp.User.Email != "reviewer@example.com" {
		t.Errorf("Expected authenticated reviewer, got %+v", resp)
	}
}

func TestRefresh(t *testing.T) {
	h, _ := setupAuth(t)

	w := httptest.NewRecorder()
	h.Refresh(w, testutil.MakeRequest("POST", "/auth/refresh", nil, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	c := signIn(t, h)
	w = httptest.NewRecorder()
	h.Refresh(w, withSession(testutil.MakeRequest("POST", "/auth/refresh", nil, nil), c))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.RefreshResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.User.Email != "reviewer@example.com" || resp.ExpiresAt.IsZero() {
		t.Errorf("Unexpected refresh response %+v", resp)
	}
}

func TestLogout(t *testing.T) {
	h, st := setupAuth(t)
	c := signIn(t, h)

	w := httptest.NewRecorder()
	h.Logout(w, withSession(testutil.MakeRequest("GET", "/auth/logout", nil, nil), c))
	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.MessageResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "Logged out successfully" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
	if n, _ := st.CountSessions(context.Background()); n != 0 {
		t.Errorf("Expected session row removed, %d left", n)
	}

	// Old cookie no longer refreshes
	w = httptest.NewRecorder()
	h.Refresh(w, withSession(testutil.MakeRequest("POST", "/auth/refresh", nil, nil), c))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = httptest.NewRecorder()
	h.Logout(w, testutil.MakeRequest("GET", "/auth/logout", nil, nil))
	resp = models.MessageResponse{}
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "No session to clear" {
		t.Errorf("Unexpected message %q", resp.Message)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/danielhkuo/applicant-reviewer/db"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/session"
	"github.com/danielhkuo/applicant-reviewer/store"
	"github.com/danielhkuo/applicant-reviewer/testutil"
)

type fakeProvider struct{}

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (fakeProvider) Identify(ctx context.Context, code string) (models.Identity, error) {
	if code != "reviewer-code" {
		return models.Identity{}, errors.New("invalid_grant")
	}
	return models.Identity{Email: "reviewer@example.com", Name: "Reviewer"}, nil
}

const externalID = "1AbC-d_E"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := testutil.GetTestConfig()
	st := store.New(testutil.SetupTestDB(t), db.SQLite)
	src := testutil.NewFakeSource()
	src.Put(externalID, "Spring Applicants", [][]string{
		{"Name", "Email", "Role", "Name"},
		{"Alice", "alice@example.com", "Design", "Al"},
		{"Bob", "bob@example.com", "Design", "Bo"},
	})

	guard := session.NewGuard(st, session.Config{
		AllowedEmail: cfg.AllowedEmail,
		Secret:       cfg.SessionSecret,
		TTL:          cfg.SessionTTL,
	}, nil)

	srv := httptest.NewServer(NewHandler(Deps{
		Store:    st,
		Source:   src,
		Guard:    guard,
		Provider: fakeProvider{},
		Config:   cfg,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func do(t *testing.T, c *http.Client, method, u string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, u, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, u, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, u, err)
		}
	}
	return resp.StatusCode
}

func signIn(t *testing.T, srv *httptest.Server, c *http.Client) {
	t.Helper()
	resp, err := c.Get(srv.URL + "/auth/google")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("Expected redirect to provider, got %d", resp.StatusCode)
	}
	loc, _ := url.Parse(resp.Header.Get("Location"))
	state := loc.Query().Get("state")

	q := url.Values{"state": {state}, "code": {"reviewer-code"}}
	resp, err = c.Get(srv.URL + "/auth/google/callback?" + q.Encode())
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	loc, _ = url.Parse(resp.Header.Get("Location"))
	if loc.Query().Get("auth") != "success" {
		t.Fatalf("Expected auth=success, got %s", loc)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", body)
	}
}

func TestRootEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if string(body) != "applicant-reviewer API v1" {
		t.Errorf("Unexpected root body '%s'", body)
	}

	resp, err = http.Get(srv.URL + "/no-such-route")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown path, got %d", resp.StatusCode)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/api/sheets"},
		{"POST", "/api/sheets"},
		{"DELETE", "/api/sheets/x"},
		{"GET", "/api/sheets/x/applicants"},
		{"GET", "/api/sheets/x/votes"},
		{"GET", "/api/sheets/x/votes/1"},
		{"POST", "/api/votes"},
		{"DELETE", "/api/votes/x/1/Ann"},
		{"GET", "/api/sheets/x/selections"},
		{"GET", "/api/sheets/x/selections/1"},
		{"PUT", "/api/sheets/x/selections/1"},
		{"GET", "/api/sheets/x/notes"},
		{"GET", "/api/sheets/x/notes/1"},
		{"PUT", "/api/sheets/x/notes/1"},
		{"POST", "/auth/refresh"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			if status := do(t, c, tc.method, srv.URL+tc.path, nil, nil); status != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", status)
			}
		})
	}
}

func TestReviewFlow(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t)
	signIn(t, srv, c)

	var status models.AuthStatusResponse
	do(t, c, "GET", srv.URL+"/auth/status", nil, &status)
	if !status.Authenticated || status.User.Email != "reviewer@example.com" {
		t.Fatalf("Expected authenticated reviewer, got %+v", status)
	}

	var sheet models.Sheet
	code := do(t, c, "POST", srv.URL+"/api/sheets", models.CreateSheetRequest{
		Year: "2026", Term: "Spring",
		SheetURL: "https://docs.google.com/spreadsheets/d/" + externalID + "/edit",
	}, &sheet)
	if code != http.StatusCreated {
		t.Fatalf("Expected 201 creating sheet, got %d", code)
	}

	var added models.AddVoteResponse
	code = do(t, c, "POST", srv.URL+"/api/votes", models.AddVoteRequest{
		SheetID: sheet.ID, ApplicantRow: 2, VoterName: "Ann Lee",
	}, &added)
	if code != http.StatusOK || added.TotalVotes != 1 {
		t.Fatalf("Expected vote added, got %d %+v", code, added)
	}

	var voters []string
	do(t, c, "GET", srv.URL+"/api/sheets/"+sheet.ID+"/votes/2", nil, &voters)
	if len(voters) != 1 || voters[0] != "Ann Lee" {
		t.Errorf("Expected [Ann Lee] voting for row 2, got %v", voters)
	}

	var view models.ApplicantsResponse
	do(t, c, "GET", srv.URL+"/api/sheets/"+sheet.ID+"/applicants", nil, &view)
	design := view.Applicants["Design"]
	if len(design) != 2 || design[0].RowIndex != 2 {
		t.Fatalf("Expected Bob ranked first, got %+v", design)
	}
	if design[0].Fields["Name (return director)"] != "Bob" || design[0].Fields["Name"] != "Bo" {
		t.Errorf("Expected duplicate header renamed, got %+v", design[0].Fields)
	}

	yes, no := true, false
	if code := do(t, c, "PUT", srv.URL+"/api/sheets/"+sheet.ID+"/selections/2",
		models.UpdateSelectionRequest{SelectedForInterview: &yes, SelectedForHiring: &no}, nil); code != http.StatusOK {
		t.Errorf("Expected 200 updating selection, got %d", code)
	}

	var deleted models.DeleteVoteResponse
	code = do(t, c, "DELETE", srv.URL+"/api/votes/"+sheet.ID+"/2/"+url.PathEscape("Ann Lee"), nil, &deleted)
	if code != http.StatusOK || deleted.DeletedVoter != "Ann Lee" {
		t.Errorf("Expected escaped voter name to round-trip, got %d %+v", code, deleted)
	}

	var removed models.DeleteSheetResponse
	do(t, c, "DELETE", srv.URL+"/api/sheets/"+sheet.ID, nil, &removed)
	if removed.RemovedSelections != 1 {
		t.Errorf("Expected 1 selection removed, got %+v", removed)
	}

	do(t, c, "GET", srv.URL+"/auth/logout", nil, nil)
	if code := do(t, c, "GET", srv.URL+"/api/sheets", nil, nil); code != http.StatusUnauthorized {
		t.Errorf("Expected 401 after logout, got %d", code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest("OPTIONS", srv.URL+"/api/votes", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("Expected credentialed CORS for the client origin")
	}
}

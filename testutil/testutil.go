// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/cliparse"
	"github.com/danielhkuo/applicant-reviewer/db"
)

// SetupTestDB creates a fresh SQLite database in a temp dir with the full
// schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := "file:" + filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(context.Background(), db.SQLite, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.SQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseType:       "sqlite",
		DatabaseURL:        "file:test.db",
		GoogleClientID:     "test-client-id",
		GoogleClientSecret: "test-client-secret",
		GoogleCallbackURL:  "http://localhost:3318/auth/google/callback",
		AllowedEmail:       "reviewer@example.com",
		SessionSecret:      "test-session-secret",
		SessionTTL:         7 * 24 * time.Hour,
		SheetsXLSXDir:      "testdata",
		ClientURL:          "http://localhost:3000",
	}
}

// FakeSource is an in-memory spreadsheet source keyed by external id.
type FakeSource struct {
	mu     sync.Mutex
	sheets map[string]fakeSheet
	Err    error
}

type fakeSheet struct {
	title string
	rows  [][]string
}

func NewFakeSource() *FakeSource {
	return &FakeSource{sheets: make(map[string]fakeSheet)}
}

// Put registers a spreadsheet with its rows, header row first.
func (f *FakeSource) Put(externalID, title string, rows [][]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sheets[externalID] = fakeSheet{title: title, rows: rows}
}

func (f *FakeSource) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

func (f *FakeSource) Title(ctx context.Context, externalID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	s, ok := f.sheets[externalID]
	if !ok {
		return "", apperr.New(apperr.NotFound, "Spreadsheet not found or not shared with the reader")
	}
	return s.title, nil
}

func (f *FakeSource) Rows(ctx context.Context, externalID string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	s, ok := f.sheets[externalID]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Spreadsheet not found or not shared with the reader")
	}
	return s.rows, nil
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		input   string
		want    Dialect
		wantErr bool
	}{
		{"postgres", Postgres, false},
		{"PostgreSQL", Postgres, false},
		{"sqlite", SQLite, false},
		{"", SQLite, false},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDialect(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite untouched", SQLite, "SELECT * FROM vote WHERE sheet_id = ? AND applicant_row = ?", "SELECT * FROM vote WHERE sheet_id = ? AND applicant_row = ?"},
		{"postgres numbered", Postgres, "SELECT * FROM vote WHERE sheet_id = ? AND applicant_row = ?", "SELECT * FROM vote WHERE sheet_id = $1 AND applicant_row = $2"},
		{"quoted literal kept", Postgres, "SELECT '?' FROM sheet WHERE id = ?", "SELECT '?' FROM sheet WHERE id = $1"},
		{"no placeholders", Postgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Rebind(tt.query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenSQLiteAndCreateSchema(t *testing.T) {
	ctx := context.Background()
	url := "file:" + filepath.Join(t.TempDir(), "test.db")

	conn, err := Open(ctx, SQLite, url)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	// Running twice must be harmless
	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn, SQLite); err != nil {
			t.Fatalf("CreateSchema() run %d error = %v", i+1, err)
		}
	}

	now := time.Now().UTC()
	_, err = conn.Exec(`INSERT INTO sheet (id, year, term, sheet_url, external_sheet_id, title, submitted_at)
		VALUES (?, '2025', 'Fall', 'https://example.com', 'ext', 'Title', ?)`, "s1", now)
	if err != nil {
		t.Fatalf("insert sheet: %v", err)
	}

	insertVote := `INSERT INTO vote (sheet_id, applicant_row, voter_name, created_at) VALUES (?, ?, ?, ?)`
	if _, err := conn.Exec(insertVote, "s1", 5, "Alice", now); err != nil {
		t.Fatalf("insert vote: %v", err)
	}

	_, err = conn.Exec(insertVote, "s1", 5, "Alice", now)
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}

	_, err = conn.Exec(insertVote, "missing", 5, "Alice", now)
	if !IsForeignKeyViolation(err) {
		t.Errorf("expected foreign key violation, got %v", err)
	}
}

func TestOpenUnsupportedDialect(t *testing.T) {
	if _, err := Open(context.Background(), Dialect("mysql"), "x"); err == nil {
		t.Error("expected error for unsupported dialect")
	}
}

func TestConstraintHelpers_Postgres(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique, fk bool
	}{
		{"unique", &pq.Error{Code: "23505"}, true, false},
		{"foreign key", &pq.Error{Code: "23503"}, false, true},
		{"other pq", &pq.Error{Code: "42P01"}, false, false},
		{"plain", errors.New("boom"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.unique {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.unique)
			}
			if got := IsForeignKeyViolation(tt.err); got != tt.fk {
				t.Errorf("IsForeignKeyViolation() = %v, want %v", got, tt.fk)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	if got := sqliteDSN("file:x.db?cache=shared"); got[:len("file:x.db?cache=shared&")] != "file:x.db?cache=shared&" {
		t.Errorf("expected pragmas appended with &, got %q", got)
	}
	if got := sqliteDSN("file:x.db"); got[:len("file:x.db?")] != "file:x.db?" {
		t.Errorf("expected pragmas appended with ?, got %q", got)
	}
}

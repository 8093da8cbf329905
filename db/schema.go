// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	schema := sqliteSchema
	if dialect == Postgres {
		schema = postgresSchema
	}

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const postgresSchema = `
-- Sheets
CREATE TABLE IF NOT EXISTS sheet (
    id TEXT PRIMARY KEY,
    year TEXT NOT NULL,
    term TEXT NOT NULL,
    sheet_url TEXT NOT NULL,
    external_sheet_id TEXT NOT NULL,
    title TEXT NOT NULL,
    submitted_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sheet_submitted_at ON sheet(submitted_at);

-- Votes (one per voter name per applicant row)
CREATE TABLE IF NOT EXISTS vote (
    id BIGSERIAL PRIMARY KEY,
    sheet_id TEXT NOT NULL REFERENCES sheet(id),
    applicant_row INTEGER NOT NULL,
    voter_name TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    UNIQUE (sheet_id, applicant_row, voter_name)
);

CREATE INDEX IF NOT EXISTS idx_vote_sheet_id ON vote(sheet_id);

-- Selections
CREATE TABLE IF NOT EXISTS selection (
    sheet_id TEXT NOT NULL REFERENCES sheet(id),
    applicant_row INTEGER NOT NULL,
    selected_for_interview BOOLEAN NOT NULL DEFAULT FALSE,
    selected_for_hiring BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (sheet_id, applicant_row)
);

-- Notes
CREATE TABLE IF NOT EXISTS note (
    sheet_id TEXT NOT NULL REFERENCES sheet(id),
    applicant_row INTEGER NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (sheet_id, applicant_row)
);

-- Sessions
CREATE TABLE IF NOT EXISTS session (
    token_hash TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    picture TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expires_at ON session(expires_at);
`

const sqliteSchema = `
-- Sheets
CREATE TABLE IF NOT EXISTS sheet (
    id TEXT PRIMARY KEY,
    year TEXT NOT NULL,
    term TEXT NOT NULL,
    sheet_url TEXT NOT NULL,
    external_sheet_id TEXT NOT NULL,
    title TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sheet_submitted_at ON sheet(submitted_at);

-- Votes (one per voter name per applicant row)
CREATE TABLE IF NOT EXISTS vote (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sheet_id TEXT NOT NULL REFERENCES sheet(id),
    applicant_row INTEGER NOT NULL,
    voter_name TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (sheet_id, applicant_row, voter_name)
);

CREATE INDEX IF NOT EXISTS idx_vote_sheet_id ON vote(sheet_id);

-- Selections
CREATE TABLE IF NOT EXISTS selection (
    sheet_id TEXT NOT NULL REFERENCES sheet(id),
    applicant_row INTEGER NOT NULL,
    selected_for_interview BOOLEAN NOT NULL DEFAULT 0,
    selected_for_hiring BOOLEAN NOT NULL DEFAULT 0,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (sheet_id, applicant_row)
);

-- Notes
CREATE TABLE IF NOT EXISTS note (
    sheet_id TEXT NOT NULL REFERENCES sheet(id),
    applicant_row INTEGER NOT NULL,
    text TEXT NOT NULL DEFAULT '',
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (sheet_id, applicant_row)
);

-- Sessions
CREATE TABLE IF NOT EXISTS session (
    token_hash TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    picture TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_expires_at ON session(expires_at);
`

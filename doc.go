// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the applicant-reviewer command.

Applicant Reviewer lets one allow-listed reviewer register application
spreadsheets, browse applicants grouped by the role they applied for, vote
on them by name, and mark them for interview or hiring.

# Commands

	applicant-reviewer serve                      # HTTP API (default)
	applicant-reviewer migrate data.json          # import the file-backed store
	applicant-reviewer backup -o gs://bucket/obj  # JSON backup, never overwrites
	applicant-reviewer export <sheetId> -o a.xlsx # ranked applicants per role

# Configuration

Flags fall back to environment variables, and a .env file in the working
directory is loaded first. Required for serve:

  - GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_CALLBACK_URL
  - ALLOWED_EMAIL: the only identity allowed to sign in
  - SESSION_SECRET: HMAC key for session tokens and OAuth state
  - GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_SHEETS_CLIENT_EMAIL with
    GOOGLE_SHEETS_PRIVATE_KEY, or SHEETS_XLSX_DIR for offline sheets

Optional:

  - PORT (-p): server port (default: 5001)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): defaults to file:applicant-reviewer.db for sqlite
  - SESSION_TTL: sliding session lifetime (default: 168h)
  - CLIENT_URL, SERVER_URL: allowed CORS origins

# Architecture

  - handlers: HTTP request handlers (sheets, votes, selections, auth)
  - router: route table and session gating
  - middleware: CORS, logging, JSON and error helpers
  - applicants: header normalization, role classification, aggregation
  - store: sheets, votes, selections, notes and sessions in SQL
  - session: allow-listed login and sliding server-side sessions
  - sheetsource: Google Sheets or .xlsx spreadsheet readers
  - backup: snapshots, migration and workbook export
  - client: Go API client with refresh-and-retry and keep-alive
  - apperr, auth, db, cliparse, models: shared plumbing

See package documentation for each component.
*/
package main

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Dialects

Two backing stores satisfy the same contracts:

  - SQLite (default, modernc.org/sqlite, pure Go)
  - PostgreSQL (github.com/lib/pq)

Open connects and pings:

	conn, err := db.Open(ctx, db.SQLite, "file:applicant-reviewer.db")

Queries are written with ? placeholders and passed through Rebind:

	conn.QueryContext(ctx, dialect.Rebind("SELECT ... WHERE id = ?"), id)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, dialect); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - sheet: Submitted spreadsheets
  - vote: One row per (sheet, applicant row, voter name)
  - selection: Interview/hire flags per applicant row
  - note: Reviewer notes per applicant row
  - session: Server-side sessions keyed by token hash

# Relationships

	sheet 1──* vote
	sheet 1──* selection
	sheet 1──* note

Foreign keys have no ON DELETE action: deleting a sheet removes its
dependents explicitly inside one transaction so the removed counts can be
reported. A write that references a missing sheet fails the foreign key
check.

# Constraint Errors

IsUniqueViolation and IsForeignKeyViolation recognize constraint failures
from both drivers so callers can map them to domain errors.
*/
package db

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/db"
)

var (
	ErrSheetNotFound   = errors.New("sheet not found")
	ErrDuplicateVote   = errors.New("duplicate vote")
	ErrVoteNotFound    = errors.New("vote not found")
	ErrSessionNotFound = errors.New("session not found")
)

func init() {
	apperr.Register(ErrSheetNotFound, apperr.NotFound, "Sheet not found")
	apperr.Register(ErrDuplicateVote, apperr.DuplicateVote, "You have already voted for this applicant")
	apperr.Register(ErrVoteNotFound, apperr.NotFound, "Vote not found")
	apperr.Register(ErrSessionNotFound, apperr.NotAuthenticated, "Not authenticated")
}

// Store is the persistence layer for sheets, votes, selections, notes and
// sessions. Uniqueness and cascade atomicity are enforced by the database.
type Store struct {
	conn    *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

func New(conn *sql.DB, dialect db.Dialect) *Store {
	return &Store{
		conn:    conn,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// q rebinds a ?-placeholder query for the store's dialect.
func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/applicant-reviewer/models"
)

// Session is a server-side login keyed by the hash of its cookie token.
type Session struct {
	TokenHash string
	User      models.Identity
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Store) CreateSession(ctx context.Context, sess Session) error {
	_, err := s.conn.ExecContext(ctx, s.q(`
		INSERT INTO session (token_hash, email, name, picture, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`), sess.TokenHash, sess.User.Email, sess.User.Name, sess.User.Picture, sess.CreatedAt, sess.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession returns the session for tokenHash, expired or not.
func (s *Store) GetSession(ctx context.Context, tokenHash string) (Session, error) {
	sess := Session{TokenHash: tokenHash}
	err := s.conn.QueryRowContext(ctx, s.q(`
		SELECT email, name, picture, created_at, expires_at
		FROM session WHERE token_hash = ?
	`), tokenHash).Scan(&sess.User.Email, &sess.User.Name, &sess.User.Picture, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return sess, nil
}

// ExtendSession moves a session's expiry. ErrSessionNotFound means the
// session was removed since it was read.
func (s *Store) ExtendSession(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	r, err := s.conn.ExecContext(ctx, s.q(`
		UPDATE session SET expires_at = ? WHERE token_hash = ?
	`), expiresAt, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to extend session: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to count sessions: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes a session; removing a missing one is not an error.
func (s *Store) DeleteSession(ctx context.Context, tokenHash string) error {
	_, err := s.conn.ExecContext(ctx, s.q(`DELETE FROM session WHERE token_hash = ?`), tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	r, err := s.conn.ExecContext(ctx, s.q(`DELETE FROM session WHERE expires_at <= ?`), now.UTC().Truncate(time.Microsecond))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return r.RowsAffected()
}

// CountSessions returns the number of stored sessions.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM session`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

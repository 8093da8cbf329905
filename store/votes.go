// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/danielhkuo/applicant-reviewer/db"
	"github.com/danielhkuo/applicant-reviewer/models"
)

// AddVote records voterName's vote for an applicant row and returns the
// row's voters in the order they voted. The UNIQUE constraint on
// (sheet_id, applicant_row, voter_name) makes concurrent identical votes
// yield exactly one success and ErrDuplicateVote for the rest.
func (s *Store) AddVote(ctx context.Context, sheetID string, row int, voterName string) ([]string, error) {
	voterName = strings.TrimSpace(voterName)

	_, err := s.conn.ExecContext(ctx, s.q(`
		INSERT INTO vote (sheet_id, applicant_row, voter_name, created_at)
		VALUES (?, ?, ?, ?)
	`), sheetID, row, voterName, s.now())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicateVote
		}
		if db.IsForeignKeyViolation(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	return s.voters(ctx, s.conn, sheetID, row)
}

// DeleteVote removes one vote and returns the remaining voters in the
// order they voted.
func (s *Store) DeleteVote(ctx context.Context, sheetID string, row int, voterName string) ([]string, error) {
	voterName = strings.TrimSpace(voterName)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx, s.q(`
		DELETE FROM vote
		WHERE sheet_id = ? AND applicant_row = ? AND voter_name = ?
	`), sheetID, row, voterName)
	if err != nil {
		return nil, fmt.Errorf("failed to delete vote: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to count deleted votes: %w", err)
	}
	if n == 0 {
		return nil, ErrVoteNotFound
	}

	remaining, err := s.voters(ctx, tx, sheetID, row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return remaining, nil
}

// Voters returns the voters of one applicant row in the order they voted.
func (s *Store) Voters(ctx context.Context, sheetID string, row int) ([]string, error) {
	return s.voters(ctx, s.conn, sheetID, row)
}

// Tally returns every voter list of a sheet keyed by models.ApplicantKey.
// Rows without votes are absent.
func (s *Store) Tally(ctx context.Context, sheetID string) (map[string][]string, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT applicant_row, voter_name
		FROM vote
		WHERE sheet_id = ?
		ORDER BY id
	`), sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	tally := make(map[string][]string)
	for rows.Next() {
		var (
			row   int
			voter string
		)
		if err := rows.Scan(&row, &voter); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		key := models.ApplicantKey(sheetID, row)
		tally[key] = append(tally[key], voter)
	}
	return tally, rows.Err()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) voters(ctx context.Context, q querier, sheetID string, row int) ([]string, error) {
	rows, err := q.QueryContext(ctx, s.q(`
		SELECT voter_name
		FROM vote
		WHERE sheet_id = ? AND applicant_row = ?
		ORDER BY id
	`), sheetID, row)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	voters := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

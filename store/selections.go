// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/applicant-reviewer/db"
	"github.com/danielhkuo/applicant-reviewer/models"
)

// UpsertSelection replaces both flags of an applicant row. Concurrent
// writers to the same row are last-write-wins; flags are never merged.
func (s *Store) UpsertSelection(ctx context.Context, sheetID string, row int, sel models.Selection) (models.Selection, error) {
	now := s.now()
	_, err := s.conn.ExecContext(ctx, s.q(`
		INSERT INTO selection (sheet_id, applicant_row, selected_for_interview, selected_for_hiring, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (sheet_id, applicant_row) DO UPDATE SET
			selected_for_interview = excluded.selected_for_interview,
			selected_for_hiring = excluded.selected_for_hiring,
			updated_at = excluded.updated_at
	`), sheetID, row, sel.SelectedForInterview, sel.SelectedForHiring, now)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return models.Selection{}, ErrSheetNotFound
		}
		return models.Selection{}, fmt.Errorf("failed to upsert selection: %w", err)
	}

	return models.Selection{
		SelectedForInterview: sel.SelectedForInterview,
		SelectedForHiring:    sel.SelectedForHiring,
		UpdatedAt:            &now,
	}, nil
}

// Selections returns every selection of a sheet keyed by models.ApplicantKey.
func (s *Store) Selections(ctx context.Context, sheetID string) (map[string]models.Selection, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT applicant_row, selected_for_interview, selected_for_hiring, updated_at
		FROM selection
		WHERE sheet_id = ?
	`), sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query selections: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.Selection)
	for rows.Next() {
		var (
			row       int
			sel       models.Selection
			updatedAt time.Time
		)
		if err := rows.Scan(&row, &sel.SelectedForInterview, &sel.SelectedForHiring, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan selection: %w", err)
		}
		sel.UpdatedAt = &updatedAt
		out[models.ApplicantKey(sheetID, row)] = sel
	}
	return out, rows.Err()
}

// Selection returns one applicant's selection; an applicant never marked
// has both flags false and no UpdatedAt.
func (s *Store) Selection(ctx context.Context, sheetID string, row int) (models.Selection, error) {
	var (
		sel       models.Selection
		updatedAt time.Time
	)
	err := s.conn.QueryRowContext(ctx, s.q(`
		SELECT selected_for_interview, selected_for_hiring, updated_at
		FROM selection
		WHERE sheet_id = ? AND applicant_row = ?
	`), sheetID, row).Scan(&sel.SelectedForInterview, &sel.SelectedForHiring, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Selection{}, nil
	}
	if err != nil {
		return models.Selection{}, fmt.Errorf("failed to query selection: %w", err)
	}
	sel.UpdatedAt = &updatedAt
	return sel, nil
}

// UpsertNote replaces the note text of an applicant row.
func (s *Store) UpsertNote(ctx context.Context, sheetID string, row int, text string) (models.Note, error) {
	now := s.now()
	_, err := s.conn.ExecContext(ctx, s.q(`
		INSERT INTO note (sheet_id, applicant_row, text, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (sheet_id, applicant_row) DO UPDATE SET
			text = excluded.text,
			updated_at = excluded.updated_at
	`), sheetID, row, text, now)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return models.Note{}, ErrSheetNotFound
		}
		return models.Note{}, fmt.Errorf("failed to upsert note: %w", err)
	}
	return models.Note{Text: text, UpdatedAt: &now}, nil
}

// Notes returns every note of a sheet keyed by models.ApplicantKey.
func (s *Store) Notes(ctx context.Context, sheetID string) (map[string]models.Note, error) {
	rows, err := s.conn.QueryContext(ctx, s.q(`
		SELECT applicant_row, text, updated_at
		FROM note
		WHERE sheet_id = ?
	`), sheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.Note)
	for rows.Next() {
		var (
			row       int
			n         models.Note
			updatedAt time.Time
		)
		if err := rows.Scan(&row, &n.Text, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		n.UpdatedAt = &updatedAt
		out[models.ApplicantKey(sheetID, row)] = n
	}
	return out, rows.Err()
}

// Note returns one applicant's note; empty when none was written.
func (s *Store) Note(ctx context.Context, sheetID string, row int) (models.Note, error) {
	var (
		n         models.Note
		updatedAt time.Time
	)
	err := s.conn.QueryRowContext(ctx, s.q(`
		SELECT text, updated_at FROM note WHERE sheet_id = ? AND applicant_row = ?
	`), sheetID, row).Scan(&n.Text, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, nil
	}
	if err != nil {
		return models.Note{}, fmt.Errorf("failed to query note: %w", err)
	}
	n.UpdatedAt = &updatedAt
	return n, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/danielhkuo/applicant-reviewer/models"
)

// DeleteResult counts the records removed with a sheet.
type DeleteResult struct {
	Votes      int64
	Selections int64
	Notes      int64
}

// CreateSheet persists a sheet. A missing ID gets a fresh UUIDv7 and a zero
// SubmittedAt is set to now; imported sheets keep theirs.
func (s *Store) CreateSheet(ctx context.Context, sheet models.Sheet) (models.Sheet, error) {
	if sheet.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return models.Sheet{}, fmt.Errorf("failed to generate sheet id: %w", err)
		}
		sheet.ID = id.String()
	}
	if sheet.SubmittedAt.IsZero() {
		sheet.SubmittedAt = s.now()
	}

	_, err := s.conn.ExecContext(ctx, s.q(`
		INSERT INTO sheet (id, year, term, sheet_url, external_sheet_id, title, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), sheet.ID, sheet.Year, sheet.Term, sheet.SheetURL, sheet.ExternalSheetID, sheet.Title, sheet.SubmittedAt)
	if err != nil {
		return models.Sheet{}, fmt.Errorf("failed to insert sheet: %w", err)
	}
	return sheet, nil
}

// ListSheets returns every sheet, newest first.
func (s *Store) ListSheets(ctx context.Context) ([]models.Sheet, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, year, term, sheet_url, external_sheet_id, title, submitted_at
		FROM sheet
		ORDER BY submitted_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sheets: %w", err)
	}
	defer rows.Close()

	sheets := []models.Sheet{}
	for rows.Next() {
		var sh models.Sheet
		if err := rows.Scan(&sh.ID, &sh.Year, &sh.Term, &sh.SheetURL, &sh.ExternalSheetID, &sh.Title, &sh.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheets = append(sheets, sh)
	}
	return sheets, rows.Err()
}

// GetSheet returns one sheet or ErrSheetNotFound.
func (s *Store) GetSheet(ctx context.Context, id string) (models.Sheet, error) {
	var sh models.Sheet
	err := s.conn.QueryRowContext(ctx, s.q(`
		SELECT id, year, term, sheet_url, external_sheet_id, title, submitted_at
		FROM sheet WHERE id = ?
	`), id).Scan(&sh.ID, &sh.Year, &sh.Term, &sh.SheetURL, &sh.ExternalSheetID, &sh.Title, &sh.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Sheet{}, ErrSheetNotFound
	}
	if err != nil {
		return models.Sheet{}, fmt.Errorf("failed to query sheet: %w", err)
	}
	return sh, nil
}

// DeleteSheet removes a sheet and all of its votes, selections and notes in
// one transaction. Nothing is removed when any step fails.
func (s *Store) DeleteSheet(ctx context.Context, id string) (DeleteResult, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var res DeleteResult
	for _, step := range []struct {
		table string
		count *int64
	}{
		{"vote", &res.Votes},
		{"selection", &res.Selections},
		{"note", &res.Notes},
	} {
		r, err := tx.ExecContext(ctx, s.q(`DELETE FROM `+step.table+` WHERE sheet_id = ?`), id)
		if err != nil {
			return DeleteResult{}, fmt.Errorf("failed to delete %s rows: %w", step.table, err)
		}
		if *step.count, err = r.RowsAffected(); err != nil {
			return DeleteResult{}, fmt.Errorf("failed to count %s rows: %w", step.table, err)
		}
	}

	r, err := tx.ExecContext(ctx, s.q(`DELETE FROM sheet WHERE id = ?`), id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to delete sheet: %w", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		return DeleteResult{}, fmt.Errorf("failed to count sheet rows: %w", err)
	}
	if n == 0 {
		return DeleteResult{}, ErrSheetNotFound
	}

	if err := tx.Commit(); err != nil {
		return DeleteResult{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return res, nil
}

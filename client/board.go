// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/danielhkuo/applicant-reviewer/models"
)

// SelectionWriter persists selections; *Client implements it.
type SelectionWriter interface {
	Selections(ctx context.Context, sheetID string) (map[string]models.Selection, error)
	UpdateSelection(ctx context.Context, sheetID string, row int, sel models.Selection) (models.Selection, error)
}

// SelectionBoard is an optimistic local view of one sheet's selections.
// A change shows immediately; if the server rejects it the row reverts to
// the last value the server confirmed.
type SelectionBoard struct {
	writer  SelectionWriter
	sheetID string

	mu        sync.Mutex
	confirmed map[int]models.Selection
	local     map[int]models.Selection
	// gen counts local writes per row so a stale response cannot overwrite
	// a newer optimistic value.
	gen map[int]uint64
}

func NewSelectionBoard(w SelectionWriter, sheetID string) *SelectionBoard {
	return &SelectionBoard{
		writer:    w,
		sheetID:   sheetID,
		confirmed: make(map[int]models.Selection),
		local:     make(map[int]models.Selection),
		gen:       make(map[int]uint64),
	}
}

// Load replaces the board with the server's records.
func (b *SelectionBoard) Load(ctx context.Context) error {
	all, err := b.writer.Selections(ctx, b.sheetID)
	if err != nil {
		return err
	}

	prefix := b.sheetID + "-"
	confirmed := make(map[int]models.Selection, len(all))
	for key, sel := range all {
		suffix, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		row, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		confirmed[row] = sel
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmed = confirmed
	b.local = make(map[int]models.Selection, len(confirmed))
	for row, sel := range confirmed {
		b.local[row] = sel
	}
	return nil
}

// Get returns the displayed selection of a row.
func (b *SelectionBoard) Get(row int) models.Selection {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.local[row]
}

// Set shows sel at once and writes it to the server. On failure the row
// reverts to its last confirmed value and the error is returned.
func (b *SelectionBoard) Set(ctx context.Context, row int, sel models.Selection) (models.Selection, error) {
	b.mu.Lock()
	b.gen[row]++
	gen := b.gen[row]
	b.local[row] = sel
	b.mu.Unlock()

	saved, err := b.writer.UpdateSelection(ctx, b.sheetID, row, sel)

	b.mu.Lock()
	defer b.mu.Unlock()
	latest := b.gen[row] == gen
	if err != nil {
		if latest {
			b.local[row] = b.confirmed[row]
		}
		return b.local[row], err
	}

	b.confirmed[row] = saved
	if latest {
		b.local[row] = saved
	}
	return saved, nil
}

// ToggleInterview flips the interview flag of a row.
func (b *SelectionBoard) ToggleInterview(ctx context.Context, row int) (models.Selection, error) {
	sel := b.Get(row)
	sel.SelectedForInterview = !sel.SelectedForInterview
	return b.Set(ctx, row, sel)
}

// ToggleHiring flips the hiring flag of a row.
func (b *SelectionBoard) ToggleHiring(ctx context.Context, row int) (models.Selection, error) {
	sel := b.Get(row)
	sel.SelectedForHiring = !sel.SelectedForHiring
	return b.Set(ctx, row, sel)
}

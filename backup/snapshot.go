// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/danielhkuo/applicant-reviewer/db"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/store"
)

// Snapshot is the full review state in the data.json layout of the
// file-backed store: maps keyed by "sheetId-row".
type Snapshot struct {
	Sheets      []models.Sheet              `json:"sheets"`
	Votes       map[string][]string         `json:"votes"`
	Selections  map[string]models.Selection `json:"selections"`
	Notes       map[string]models.Note      `json:"notes,omitempty"`
	LastUpdated time.Time                   `json:"lastUpdated"`
}

// Report counts what Restore wrote and what it skipped.
type Report struct {
	Sheets     int
	Votes      int
	Selections int
	Notes      int
	Skipped    int
}

// Take reads every sheet with its votes, selections and notes.
func Take(ctx context.Context, st *store.Store) (Snapshot, error) {
	sheets, err := st.ListSheets(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Sheets:      sheets,
		Votes:       make(map[string][]string),
		Selections:  make(map[string]models.Selection),
		Notes:       make(map[string]models.Note),
		LastUpdated: time.Now().UTC(),
	}
	for _, sheet := range sheets {
		tally, err := st.Tally(ctx, sheet.ID)
		if err != nil {
			return Snapshot{}, err
		}
		maps.Copy(snap.Votes, tally)

		sels, err := st.Selections(ctx, sheet.ID)
		if err != nil {
			return Snapshot{}, err
		}
		maps.Copy(snap.Selections, sels)

		notes, err := st.Notes(ctx, sheet.ID)
		if err != nil {
			return Snapshot{}, err
		}
		maps.Copy(snap.Notes, notes)
	}
	return snap, nil
}

// Read decodes a snapshot or a data.json file.
func Read(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// ReadFile reads a snapshot from path, gunzipping paths ending in ".gz".
func ReadFile(path string) (Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		r = zr
	}
	return Read(r)
}

// Encode writes snap as indented JSON.
func (s Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Bytes encodes snap for a backup target; ".gz" targets are gzipped.
func (s Snapshot) Bytes(target string) ([]byte, error) {
	var buf bytes.Buffer
	if !strings.HasSuffix(target, ".gz") {
		if err := s.Encode(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	zw := gzip.NewWriter(&buf)
	if err := s.Encode(zw); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore writes snap into st. Records that already exist are skipped so
// the same file can be applied twice. Votes, selections and notes whose
// sheet is missing are skipped too.
func Restore(ctx context.Context, st *store.Store, snap Snapshot, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var rep Report

	for _, sheet := range snap.Sheets {
		if sheet.ID == "" {
			rep.Skipped++
			logger.Warn("skipping sheet without id", "title", sheet.Title)
			continue
		}
		if _, err := st.CreateSheet(ctx, sheet); err != nil {
			if db.IsUniqueViolation(err) {
				rep.Skipped++
				logger.Info("sheet already exists", "sheet_id", sheet.ID, "title", sheet.Title)
				continue
			}
			return rep, err
		}
		rep.Sheets++
	}

	for key, voters := range snap.Votes {
		sheetID, row, err := SplitKey(key)
		if err != nil {
			rep.Skipped += len(voters)
			logger.Warn("skipping votes with bad key", "key", key)
			continue
		}
		for _, voter := range voters {
			_, err := st.AddVote(ctx, sheetID, row, voter)
			switch {
			case err == nil:
				rep.Votes++
			case errors.Is(err, store.ErrDuplicateVote), errors.Is(err, store.ErrSheetNotFound):
				rep.Skipped++
			default:
				return rep, err
			}
		}
	}

	for key, sel := range snap.Selections {
		sheetID, row, err := SplitKey(key)
		if err != nil {
			rep.Skipped++
			continue
		}
		_, err = st.UpsertSelection(ctx, sheetID, row, sel)
		switch {
		case err == nil:
			rep.Selections++
		case errors.Is(err, store.ErrSheetNotFound):
			rep.Skipped++
		default:
			return rep, err
		}
	}

	for key, note := range snap.Notes {
		sheetID, row, err := SplitKey(key)
		if err != nil {
			rep.Skipped++
			continue
		}
		_, err = st.UpsertNote(ctx, sheetID, row, note.Text)
		switch {
		case err == nil:
			rep.Notes++
		case errors.Is(err, store.ErrSheetNotFound):
			rep.Skipped++
		default:
			return rep, err
		}
	}

	return rep, nil
}

// SplitKey parses a "sheetId-row" key. The row is after the last dash, so
// sheet ids may contain dashes.
func SplitKey(key string) (string, int, error) {
	i := strings.LastIndexByte(key, '-')
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid applicant key %q", key)
	}
	row, err := strconv.Atoi(key[i+1:])
	if err != nil || row < 1 {
		return "", 0, fmt.Errorf("invalid applicant key %q", key)
	}
	return key[:i], row, nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package applicants

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/models"
)

// Source fetches the raw rows of an external spreadsheet, header row first.
type Source interface {
	Rows(ctx context.Context, externalID string) ([][]string, error)
}

// Tallier returns the voter lists of a sheet keyed by models.ApplicantKey.
type Tallier interface {
	Tally(ctx context.Context, sheetID string) (map[string][]string, error)
}

// Aggregator builds the role-grouped, vote-ranked applicant view of a sheet.
// Every call reads the source and the tally afresh.
type Aggregator struct {
	source Source
	votes  Tallier
	logger *slog.Logger
}

func NewAggregator(source Source, votes Tallier, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{source: source, votes: votes, logger: logger}
}

// Aggregate returns the applicants of sheet grouped by role. A source
// failure fails the whole read; a tally failure only loses the ranking.
func (a *Aggregator) Aggregate(ctx context.Context, sheet models.Sheet) (models.ApplicantsResponse, error) {
	log := a.logger.With("sheet_id", sheet.ID)

	var (
		rows  [][]string
		tally map[string][]string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = a.source.Rows(gctx, sheet.ExternalSheetID)
		return err
	})
	g.Go(func() error {
		t, err := a.votes.Tally(gctx, sheet.ID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Warn("could not fetch votes for sorting, continuing without vote data", "error", err)
			}
			return nil
		}
		tally = t
		return nil
	})
	if err := g.Wait(); err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return models.ApplicantsResponse{}, err
		}
		return models.ApplicantsResponse{}, apperr.Wrap(apperr.SourceUnavailable, "Failed to fetch spreadsheet", err)
	}

	result := models.ApplicantsResponse{
		Headers:    []string{},
		Roles:      []string{},
		Applicants: map[string][]models.Candidate{},
	}
	if len(rows) < 2 {
		return result, nil
	}

	cols := NormalizeHeaders(rows[0])
	layout := DetectColumns(cols)
	result.Headers = Names(cols)

	if len(layout.RoleColumns) == 0 {
		log.Warn("no role columns found in sheet headers")
	}
	if layout.NameColumn == nil {
		log.Warn("no name column found in sheet headers")
	}
	if layout.EmailColumn == nil {
		log.Warn("no email column found in sheet headers")
	}

	for i, row := range rows[1:] {
		rowIndex := i + 1
		if !layout.Identifiable(row) {
			continue
		}
		c := layout.Candidate(row, rowIndex)
		if c.Role == models.UnknownRole {
			log.Warn("row has no role value", "row", rowIndex)
		}
		if _, seen := result.Applicants[c.Role]; !seen {
			result.Roles = append(result.Roles, c.Role)
		}
		result.Applicants[c.Role] = append(result.Applicants[c.Role], c)
		result.TotalApplicants++
	}

	for _, group := range result.Applicants {
		rankByVotes(group, sheet.ID, tally)
	}

	return result, nil
}

// rankByVotes orders a role group by descending vote count. The sort is
// stable so equal counts keep spreadsheet row order.
func rankByVotes(group []models.Candidate, sheetID string, tally map[string][]string) {
	slices.SortStableFunc(group, func(a, b models.Candidate) int {
		va := len(tally[models.ApplicantKey(sheetID, a.RowIndex)])
		vb := len(tally[models.ApplicantKey(sheetID, b.RowIndex)])
		return vb - va
	})
}

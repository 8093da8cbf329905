// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package backup

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/applicant-reviewer/models"
)

const summarySheet = "Summary"

// Review is one sheet's aggregated applicants plus the review state to
// export alongside them.
type Review struct {
	Sheet      models.Sheet
	Applicants models.ApplicantsResponse
	Votes      map[string][]string
	Selections map[string]models.Selection
	Notes      map[string]models.Note
}

// ExportXLSX writes rv as a workbook: a summary sheet, then one sheet per
// role with applicants in ranked order.
func ExportXLSX(w io.Writer, rv Review) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"Title", rv.Sheet.Title},
		{"Year", rv.Sheet.Year},
		{"Term", rv.Sheet.Term},
		{"Source", rv.Sheet.SheetURL},
		{"Applicants", rv.Applicants.TotalApplicants},
	}
	for i, row := range summary {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return err
		}
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	for _, role := range rv.Applicants.Roles {
		name := sheetName(role, used)
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet for %q: %w", role, err)
		}

		header := []any{"Row", "Votes", "Voters", "Interview", "Hiring", "Note"}
		for _, h := range rv.Applicants.Headers {
			header = append(header, h)
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}

		for i, c := range rv.Applicants.Applicants[role] {
			key := models.ApplicantKey(rv.Sheet.ID, c.RowIndex)
			voters := rv.Votes[key]
			sel := rv.Selections[key]
			row := []any{
				c.RowIndex,
				len(voters),
				strings.Join(voters, ", "),
				sel.SelectedForInterview,
				sel.SelectedForHiring,
				rv.Notes[key].Text,
			}
			for _, h := range rv.Applicants.Headers {
				row = append(row, c.Fields[h])
			}
			if err := f.SetSheetRow(name, fmt.Sprintf("A%d", i+2), &row); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

// sheetName makes a worksheet name unique among used, which is keyed by
// lowercase name: at most 31 characters, none of []:*?/\.
func sheetName(role string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(role))
	if clean == "" {
		clean = "Role"
	}

	name := truncate(clean, 31)
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(clean, 31-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package applicants

import (
	"strings"

	"github.com/danielhkuo/applicant-reviewer/models"
)

var (
	roleKeywords         = []string{"first choice directorship", "first choice", "directorship"}
	fallbackRoleKeywords = []string{"role", "position", "title", "job"}
	nameKeywords         = []string{"name"}
	emailKeywords        = []string{"email", "e-mail"}
)

// Layout is the result of column detection for one header row.
type Layout struct {
	Columns     []Column
	RoleColumns []Column
	// NameColumn and EmailColumn are nil when the sheet has no such column.
	NameColumn  *Column
	EmailColumn *Column
}

// DetectColumns finds the role, name and email columns among the display
// headers. Role columns come from the directorship keywords, or from the
// generic role keywords when none match.
func DetectColumns(cols []Column) Layout {
	layout := Layout{Columns: cols}

	layout.RoleColumns = matching(cols, roleKeywords)
	if len(layout.RoleColumns) == 0 {
		layout.RoleColumns = matching(cols, fallbackRoleKeywords)
	}

	if named := matching(cols, nameKeywords); len(named) > 0 {
		layout.NameColumn = &named[0]
	}
	if emails := matching(cols, emailKeywords); len(emails) > 0 {
		layout.EmailColumn = &emails[0]
	}
	return layout
}

func matching(cols []Column, keywords []string) []Column {
	var out []Column
	for _, c := range cols {
		lower := strings.ToLower(c.Name)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// CanIdentify reports whether any row could pass the inclusion filter.
func (l Layout) CanIdentify() bool {
	return l.NameColumn != nil && l.EmailColumn != nil
}

// RoleOf returns the first non-empty role value in header order, or
// models.UnknownRole.
func (l Layout) RoleOf(row []string) string {
	for _, c := range l.RoleColumns {
		if v := cell(row, c.Index); v != "" {
			return v
		}
	}
	return models.UnknownRole
}

// Identifiable reports whether the row has both a name and an email value
// in the authoritative columns.
func (l Layout) Identifiable(row []string) bool {
	if !l.CanIdentify() {
		return false
	}
	return cell(row, l.NameColumn.Index) != "" && cell(row, l.EmailColumn.Index) != ""
}

// Candidate builds the applicant for a data row. rowIndex is 1-based within
// the data rows.
func (l Layout) Candidate(row []string, rowIndex int) models.Candidate {
	fields := make(map[string]string, len(l.Columns))
	for _, c := range l.Columns {
		fields[c.Name] = cell(row, c.Index)
	}
	return models.Candidate{
		Fields:   fields,
		RowIndex: rowIndex,
		Role:     l.RoleOf(row),
	}
}

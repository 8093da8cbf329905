// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package applicants

import "strings"

// ReturnDirectorSuffix marks the first occurrence of a duplicated header.
const ReturnDirectorSuffix = " (return director)"

// Column is one display header and the source column it was read from.
// Index always refers to the raw header row, never to the display list:
// after dedup two columns can share a display name, and dropped empty
// headers shift display positions.
type Column struct {
	Name  string
	Index int
}

// NormalizeHeaders trims raw headers, drops empty ones and renames the first
// occurrence of every duplicated header.
func NormalizeHeaders(raw []string) []Column {
	counts := make(map[string]int, len(raw))
	for _, h := range raw {
		if h = strings.TrimSpace(h); h != "" {
			counts[h]++
		}
	}

	cols := make([]Column, 0, len(raw))
	renamed := make(map[string]bool)
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		name := h
		if counts[h] > 1 && !renamed[h] {
			name = h + ReturnDirectorSuffix
			renamed[h] = true
		}
		cols = append(cols, Column{Name: name, Index: i})
	}
	return cols
}

// Names returns the display headers in order.
func Names(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// cell returns the trimmed value at a raw column index. The spreadsheet API
// omits trailing empty cells, so short rows are normal.
func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

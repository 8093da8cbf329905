// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Request types are decoded from JSON request bodies:

  - CreateSheetRequest: Register a spreadsheet (year, term, sheetUrl)
  - AddVoteRequest: Cast a vote for an applicant row
  - UpdateSelectionRequest: Replace both interview/hire flags
  - UpdateNoteRequest: Replace the note text for an applicant row

# Domain Types

Core entities:

  - Sheet: A submitted spreadsheet tracked for one hiring cycle
  - Candidate: One applicant derived from a spreadsheet row (never stored)
  - Selection: Interview/hire marking for a row
  - Note: Free-text reviewer note for a row
  - Identity: The signed-in reviewer

# Keys

Votes, selections, and notes for a sheet are returned as maps keyed by
"sheetId-row", for example:

	{"0190c1a2-...-5": ["Alice", "Bob"]}

Voter lists keep the order in which votes were cast.

# JSON Conventions

Field names use camelCase to match the browser client. Timestamps are
RFC 3339. Optional timestamps are omitted when no record exists.
*/
package models

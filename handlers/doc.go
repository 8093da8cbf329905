// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the applicant reviewer API.

# Handler Types

Each handler is a struct holding the dependencies it needs:

  - SheetHandler: sheet registry and the aggregated applicant view
  - VoteHandler: named votes per applicant row
  - SelectionHandler: interview/hiring flags and notes
  - AuthHandler: OAuth login, session status, refresh and logout

Handlers are created via constructor functions:

	sheetHandler := handlers.NewSheetHandler(st, source, aggregator)

# Applicants

Applicants are never stored. GET /api/sheets/{id}/applicants reads the
spreadsheet, normalizes its headers, classifies each row by role and ranks
each role group by vote count. rowIndex is the 1-based spreadsheet row and
is the key for votes, selections and notes:

	GET /api/sheets/{id}/applicants → GetApplicants
	GET /api/sheets/{id}/votes      → GetVotes ({"<sheetId>-<row>": [names]})

# Votes

	POST /api/votes                                   → AddVote (409 on repeat)
	DELETE /api/votes/{sheetId}/{applicantRow}/{name} → DeleteVote

# Selections

	PUT /api/sheets/{id}/selections/{row} → UpdateSelection (both flags required)

Errors are written with middleware.WriteError, which maps apperr codes to
statuses. Every /api route runs behind middleware.RequireSession.
*/
package handlers

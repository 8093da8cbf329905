// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the applicant reviewer API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints;
NewHandler adds CORS for the configured browser origins:

	handler := router.NewHandler(router.Deps{
		Store:    st,
		Source:   src,
		Guard:    guard,
		Provider: provider,
		Config:   cfg,
	})

# Endpoints

Health:

	GET /health

Session (public):

	GET  /auth/status          - {authenticated, user}
	GET  /auth/google          - Redirect to Google sign-in
	GET  /auth/google/callback - Finish sign-in, redirect to CLIENT_URL
	GET  /auth/logout          - Revoke the session
	POST /auth/refresh         - Slide the session expiry (401 if expired)

Sheets (session required):

	POST   /api/sheets                 - Register a spreadsheet
	GET    /api/sheets                 - List, newest first
	DELETE /api/sheets/{id}            - Delete with votes, selections and notes
	GET    /api/sheets/{id}/applicants - Role-grouped, vote-ranked applicants

Votes (session required):

	GET    /api/sheets/{id}/votes                         - Tally
	POST   /api/votes                                     - Add a vote (409 on duplicate)
	DELETE /api/votes/{sheetId}/{applicantRow}/{voterName} - Remove a vote

Selections and notes (session required):

	GET /api/sheets/{id}/selections
	GET /api/sheets/{id}/selections/{row}
	PUT /api/sheets/{id}/selections/{row}
	GET /api/sheets/{id}/notes
	PUT /api/sheets/{id}/notes/{row}

Every /api route runs behind middleware.RequireSession, which slides the
session on each call.
*/
package router

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package client is a Go client for the applicant reviewer API.

# Sessions

The session lives in an HttpOnly cookie, so the client keeps a cookie jar.
Every API call that returns 401 is followed by exactly one POST
/auth/refresh and one retry:

	sheets, err := c.ListSheets(ctx)
	switch {
	case errors.Is(err, client.ErrSessionExpired): // sign in again
	case errors.Is(err, client.ErrAccessDenied):   // wrong identity
	}

Other failures come back as *apperr.Error carrying the server's code.

# Keeping a Session Alive

Keeper polls /auth/status every 30s and refreshes every 20s. A failed tick
is retried on the next one:

	k := client.NewKeeper(c, func() { showSignIn() }, nil)
	go k.Run(ctx)

# Optimistic Selections

SelectionBoard applies a selection change locally at once and reverts the
row to the last server-confirmed value if the write fails:

	board := client.NewSelectionBoard(c, sheetID)
	_ = board.Load(ctx)
	_, err := board.ToggleInterview(ctx, row)
*/
package client

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists sheets, votes, selections, notes and sessions.

# Vote Ledger

One vote per (sheet, applicant row, voter name). Voter names are trimmed
and compared case-sensitively; they are attribution labels, not logins.

	voters, err := st.AddVote(ctx, sheetID, 5, "Alice")
	if errors.Is(err, store.ErrDuplicateVote) { ... }

Uniqueness is enforced by the database constraint, never by a read before
the insert. Voter lists are always in the order votes were cast.

# Selections and Notes

Upserts replace the whole record with a fresh updatedAt. Concurrent writers
to the same applicant are last-write-wins; flags are never merged.

# Sheet Deletion

DeleteSheet removes votes, selections, notes and the sheet in one
transaction and reports the removed counts. Any failure rolls back.

# Errors

ErrSheetNotFound, ErrDuplicateVote, ErrVoteNotFound and ErrSessionNotFound
are registered with apperr so handlers can classify them directly.
*/
package store

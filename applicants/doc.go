// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package applicants turns raw spreadsheet rows into the role-grouped,
vote-ranked applicant view.

# Pipeline

	rows[0] ──NormalizeHeaders──▶ []Column ──DetectColumns──▶ Layout
	rows[1:] ──Layout.Candidate──▶ filter ──group by role──▶ rank by votes

# Header Normalization

Headers are trimmed and empty ones dropped. When a header appears more than
once, its first occurrence becomes "<header> (return director)" and the
rest keep the plain name:

	["Name", "Email", "Name", "Role"]
	→ ["Name (return director)", "Email", "Name", "Role"]

Each Column keeps the raw index it was read from; cell values are always
looked up by that index.

# Column Detection

  - Role: headers containing "first choice directorship", "first choice" or
    "directorship"; if none, headers containing "role", "position", "title"
    or "job". The first non-empty value wins, else "Unknown Role".
  - Name: the first header containing "name".
  - Email: the first header containing "email" or "e-mail".

A row is included only when both the name and the email column hold a value.
A sheet without either column yields no applicants.

# Ranking

Groups keep first-seen role order (Roles in the response). Within a group,
applicants are stable-sorted by descending vote count so ties keep row
order. Rows and votes are fetched concurrently; losing the votes degrades
ranking to zero votes rather than failing the read.
*/
package applicants

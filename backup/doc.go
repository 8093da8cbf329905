// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package backup moves review state in and out of the database.

# Snapshots

A Snapshot uses the data.json layout of the older file-backed server:

	{
	  "sheets": [{"id": "...", "sheetTitle": "...", ...}],
	  "votes": {"<sheetId>-<row>": ["Alice", "Bob"]},
	  "selections": {"<sheetId>-<row>": {"selectedForInterview": true, "selectedForHiring": false}},
	  "notes": {"<sheetId>-<row>": {"text": "..."}},
	  "lastUpdated": "2025-01-01T00:00:00Z"
	}

Take reads a store into a Snapshot. Restore writes one back and skips
records that already exist, so a data.json file can be imported more than
once.

# Saving

Save never overwrites. Local paths are created with O_EXCL; gs:// targets
are uploaded with a DoesNotExist precondition and a 412 reply counts as
"already saved".

# Export

ExportXLSX writes one sheet's applicants as a workbook with a worksheet per
role, ranked the same way as the API.
*/
package backup

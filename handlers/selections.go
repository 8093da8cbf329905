// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/applicant-reviewer/middleware"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/store"
)

// SelectionHandler serves the per-applicant review state: interview/hire
// flags and free-text notes.
type SelectionHandler struct {
	store *store.Store
}

func NewSelectionHandler(st *store.Store) *SelectionHandler {
	return &SelectionHandler{store: st}
}

// GetSelections handles GET /api/sheets/{id}/selections
func (h *SelectionHandler) GetSelections(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	if _, err := h.store.GetSheet(r.Context(), sheetID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	selections, err := h.store.Selections(r.Context(), sheetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, selections)
}

// GetSelection handles GET /api/sheets/{id}/selections/{row}
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	row, err := applicantRow(r, "row")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if _, err := h.store.GetSheet(r.Context(), sheetID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	sel, err := h.store.Selection(r.Context(), sheetID, row)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, sel)
}

// UpdateSelection handles PUT /api/sheets/{id}/selections/{row}
func (h *SelectionHandler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	row, err := applicantRow(r, "row")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.UpdateSelectionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	// Both flags are required; the update replaces the whole record.
	if req.SelectedForInterview == nil || req.SelectedForHiring == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	sel, err := h.store.UpsertSelection(r.Context(), sheetID, row, models.Selection{
		SelectedForInterview: *req.SelectedForInterview,
		SelectedForHiring:    *req.SelectedForHiring,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("selection updated",
		"sheet_id", sheetID,
		"applicant_row", row,
		"interview", sel.SelectedForInterview,
		"hiring", sel.SelectedForHiring,
		"reviewer", reviewer(r),
	)
	middleware.JSONResponse(w, http.StatusOK, sel)
}

// GetNotes handles GET /api/sheets/{id}/notes
func (h *SelectionHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	if _, err := h.store.GetSheet(r.Context(), sheetID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	notes, err := h.store.Notes(r.Context(), sheetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, notes)
}

// GetNote handles GET /api/sheets/{id}/notes/{row}. A row without a note
// gets an empty one.
func (h *SelectionHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	row, err := applicantRow(r, "row")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if _, err := h.store.GetSheet(r.Context(), sheetID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	note, err := h.store.Note(r.Context(), sheetID, row)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, note)
}

// UpdateNote handles PUT /api/sheets/{id}/notes/{row}
func (h *SelectionHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	row, err := applicantRow(r, "row")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	var req models.UpdateNoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}
	if req.Text == nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	note, err := h.store.UpsertNote(r.Context(), sheetID, row, *req.Text)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("note updated",
		"sheet_id", sheetID,
		"applicant_row", row,
		"length", len(note.Text),
		"reviewer", reviewer(r),
	)
	middleware.JSONResponse(w, http.StatusOK, note)
}

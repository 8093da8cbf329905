// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/applicant-reviewer/applicants"
	"github.com/danielhkuo/applicant-reviewer/apperr"
	"github.com/danielhkuo/applicant-reviewer/middleware"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/sheetsource"
	"github.com/danielhkuo/applicant-reviewer/store"
)

type SheetHandler struct {
	store      *store.Store
	source     sheetsource.Source
	aggregator *applicants.Aggregator
}

func NewSheetHandler(st *store.Store, source sheetsource.Source, agg *applicants.Aggregator) *SheetHandler {
	return &SheetHandler{store: st, source: source, aggregator: agg}
}

// CreateSheet handles POST /api/sheets
func (h *SheetHandler) CreateSheet(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSheetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	req.Year = strings.TrimSpace(req.Year)
	req.Term = strings.TrimSpace(req.Term)
	req.SheetURL = strings.TrimSpace(req.SheetURL)
	if req.Year == "" || req.Term == "" || req.SheetURL == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	externalID, err := sheetsource.ExtractSpreadsheetID(req.SheetURL)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	title, err := h.source.Title(r.Context(), externalID)
	if err != nil {
		slog.Warn("failed to read spreadsheet title", "external_id", externalID, "error", err)
		middleware.WriteError(w, err)
		return
	}

	sheet, err := h.store.CreateSheet(r.Context(), models.Sheet{
		Year:            req.Year,
		Term:            req.Term,
		SheetURL:        req.SheetURL,
		ExternalSheetID: externalID,
		Title:           title,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("sheet created",
		"sheet_id", sheet.ID,
		"external_id", externalID,
		"title", title,
		"reviewer", reviewer(r),
	)
	middleware.JSONResponse(w, http.StatusCreated, sheet)
}

// ListSheets handles GET /api/sheets
func (h *SheetHandler) ListSheets(w http.ResponseWriter, r *http.Request) {
	sheets, err := h.store.ListSheets(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, sheets)
}

// DeleteSheet handles DELETE /api/sheets/{id}
func (h *SheetHandler) DeleteSheet(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	if sheetID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing sheet ID")
		return
	}

	res, err := h.store.DeleteSheet(r.Context(), sheetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("sheet deleted",
		"sheet_id", sheetID,
		"votes", res.Votes,
		"selections", res.Selections,
		"notes", res.Notes,
		"reviewer", reviewer(r),
	)
	middleware.JSONResponse(w, http.StatusOK, models.DeleteSheetResponse{
		Message:           "Sheet deleted successfully",
		DeletedSheetID:    sheetID,
		RemovedVotes:      res.Votes,
		RemovedSelections: res.Selections,
		RemovedNotes:      res.Notes,
	})
}

// GetApplicants handles GET /api/sheets/{id}/applicants
func (h *SheetHandler) GetApplicants(w http.ResponseWriter, r *http.Request) {
	sheet, err := h.store.GetSheet(r.Context(), r.PathValue("id"))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp, err := h.aggregator.Aggregate(r.Context(), sheet)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// applicantRow parses a 1-based row number from the named path value.
func applicantRow(r *http.Request, name string) (int, error) {
	row, err := strconv.Atoi(r.PathValue(name))
	if err != nil || row < 1 {
		return 0, apperr.New(apperr.InvalidInput, "Invalid applicant row")
	}
	return row, nil
}

// reviewer is the signed-in email RequireSession attached to r.
func reviewer(r *http.Request) string {
	user, _ := middleware.UserFrom(r.Context())
	return user.Email
}

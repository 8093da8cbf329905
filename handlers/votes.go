// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/applicant-reviewer/middleware"
	"github.com/danielhkuo/applicant-reviewer/models"
	"github.com/danielhkuo/applicant-reviewer/store"
)

type VoteHandler struct {
	store *store.Store
}

func NewVoteHandler(st *store.Store) *VoteHandler {
	return &VoteHandler{store: st}
}

// AddVote handles POST /api/votes
func (h *VoteHandler) AddVote(w http.ResponseWriter, r *http.Request) {
	var req models.AddVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, err)
		return
	}

	req.VoterName = strings.TrimSpace(req.VoterName)
	if req.SheetID == "" || req.ApplicantRow < 1 || req.VoterName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	voters, err := h.store.AddVote(r.Context(), req.SheetID, req.ApplicantRow, req.VoterName)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("vote added",
		"sheet_id", req.SheetID,
		"applicant_row", req.ApplicantRow,
		"voter", req.VoterName,
		"total", len(voters),
		"reviewer", reviewer(r),
	)
	middleware.JSONResponse(w, http.StatusOK, models.AddVoteResponse{
		Message:    "Vote submitted successfully",
		Voters:     voters,
		TotalVotes: len(voters),
	})
}

// DeleteVote handles DELETE /api/votes/{sheetId}/{applicantRow}/{voterName}
func (h *VoteHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("sheetId")
	row, err := applicantRow(r, "applicantRow")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	voterName := strings.TrimSpace(r.PathValue("voterName"))
	if sheetID == "" || voterName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required fields")
		return
	}

	remaining, err := h.store.DeleteVote(r.Context(), sheetID, row, voterName)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("vote deleted",
		"sheet_id", sheetID,
		"applicant_row", row,
		"voter", voterName,
		"reviewer", reviewer(r),
	)
	middleware.JSONResponse(w, http.StatusOK, models.DeleteVoteResponse{
		Message:         "Vote deleted successfully",
		DeletedVoter:    voterName,
		RemainingVoters: remaining,
	})
}

// GetVotes handles GET /api/sheets/{id}/votes
func (h *VoteHandler) GetVotes(w http.ResponseWriter, r *http.Request) {
	sheetID := r.PathValue("id")
	if _, err := h.store.GetSheet(r.Context(), sheetID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	tally, err := h.store.Tally(r.Context(), sheetID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, tally)
}

// GetVoters handles GET /api/sheets/{id}/votes/{row}
func (h *VoteHandler) GetVoters(w http.ResponseWriter, r *http.Request) {
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

	voters, err := h.store.Voters(r.Context(), sheetID, row)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, voters)
}

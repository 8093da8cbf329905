// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/applicant-reviewer/applicants"
	"github.com/danielhkuo/applicant-reviewer/cliparse"
	"github.com/danielhkuo/applicant-reviewer/handlers"
	"github.com/danielhkuo/applicant-reviewer/middleware"
	"github.com/danielhkuo/applicant-reviewer/session"
	"github.com/danielhkuo/applicant-reviewer/sheetsource"
	"github.com/danielhkuo/applicant-reviewer/store"
)

// Deps are the services the routes are built on.
type Deps struct {
	Store    *store.Store
	Source   sheetsource.Source
	Guard    *session.Guard
	Provider session.Provider
	Config   cliparse.Config
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	aggregator := applicants.NewAggregator(deps.Source, deps.Store, nil)

	authHandler := handlers.NewAuthHandler(deps.Guard, deps.Provider, deps.Config)
	sheetHandler := handlers.NewSheetHandler(deps.Store, deps.Source, aggregator)
	voteHandler := handlers.NewVoteHandler(deps.Store)
	selectionHandler := handlers.NewSelectionHandler(deps.Store)

	guarded := middleware.RequireSession(deps.Guard)
	api := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(guarded(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle (public)
	mux.HandleFunc("GET /auth/status", middleware.WithLogging(authHandler.Status))
	mux.HandleFunc("GET /auth/google", middleware.WithLogging(authHandler.Login))
	mux.HandleFunc("GET /auth/google/callback", middleware.WithLogging(authHandler.Callback))
	mux.HandleFunc("GET /auth/logout", middleware.WithLogging(authHandler.Logout))
	mux.HandleFunc("POST /auth/refresh", middleware.WithLogging(authHandler.Refresh))

	// Sheet registry and applicant view
	mux.HandleFunc("POST /api/sheets", api(sheetHandler.CreateSheet))
	mux.HandleFunc("GET /api/sheets", api(sheetHandler.ListSheets))
	mux.HandleFunc("DELETE /api/sheets/{id}", api(sheetHandler.DeleteSheet))
	mux.HandleFunc("GET /api/sheets/{id}/applicants", api(sheetHandler.GetApplicants))

	// Votes
	mux.HandleFunc("GET /api/sheets/{id}/votes", api(voteHandler.GetVotes))
	mux.HandleFunc("GET /api/sheets/{id}/votes/{row}", api(voteHandler.GetVoters))
	mux.HandleFunc("POST /api/votes", api(voteHandler.AddVote))
	mux.HandleFunc("DELETE /api/votes/{sheetId}/{applicantRow}/{voterName}", api(voteHandler.DeleteVote))

	// Selections and notes
	mux.HandleFunc("GET /api/sheets/{id}/selections", api(selectionHandler.GetSelections))
	mux.HandleFunc("GET /api/sheets/{id}/selections/{row}", api(selectionHandler.GetSelection))
	mux.HandleFunc("PUT /api/sheets/{id}/selections/{row}", api(selectionHandler.UpdateSelection))
	mux.HandleFunc("GET /api/sheets/{id}/notes", api(selectionHandler.GetNotes))
	mux.HandleFunc("GET /api/sheets/{id}/notes/{row}", api(selectionHandler.GetNote))
	mux.HandleFunc("PUT /api/sheets/{id}/notes/{row}", api(selectionHandler.UpdateNote))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("applicant-reviewer API v1"))
	})

	return mux
}

// NewHandler is NewRouter behind CORS for the configured origins.
func NewHandler(deps Deps) http.Handler {
	return middleware.CORS(deps.Config.AllowedOrigins())(NewRouter(deps))
}

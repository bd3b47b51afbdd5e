package handlers

import (
	"net/http"

	"github.com/stone-realestate/leadops/internal/infra/http/middleware"
	"github.com/stone-realestate/leadops/internal/usecase"
)

// WorkspaceOpener hands out the per-session dashboard state.
type WorkspaceOpener interface {
	Open(session usecase.Session) *usecase.Workspace
}

func workspaceFor(opener WorkspaceOpener, r *http.Request) (*usecase.Workspace, usecase.Session) {
	session, _ := middleware.SessionFrom(r.Context())
	return opener.Open(session), session
}

// needsLoad is true before the first load and after a failed one.
func needsLoad(loaded bool, err error) bool {
	return !loaded || err != nil
}

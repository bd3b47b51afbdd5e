package handlers

import (
	"net/http"

	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

type AdminHandler struct {
	workspaces WorkspaceOpener
	errors     errorWriter
}

func NewAdminHandler(workspaces WorkspaceOpener, sessions SessionCloser, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{
		workspaces: workspaces,
		errors:     errorWriter{sessions: sessions, logger: logger.With(zap.String("handler", "admins"))},
	}
}

type AdminListResponse struct {
	Rows  []usecase.AdminRow `json:"rows"`
	Total int                `json:"total"`
}

func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, _ := workspaceFor(h.workspaces, r)
	if needsLoad(ws.Admins.Loaded(), ws.Admins.Err()) {
		if _, err := ws.Admins.LoadAll(r.Context()); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}
	admins := ws.Admins.Snapshot()
	writeJSON(w, http.StatusOK, AdminListResponse{Rows: usecase.AdminRows(admins), Total: len(admins)})
}

func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ws, _ := workspaceFor(h.workspaces, r)
	admins, err := ws.Admins.LoadAll(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Count: len(admins)})
}

// Create adds an admin. Duplicate checks run against the loaded list, so the
// list is loaded first when this session has not seen it yet.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateAdminInput
	if !decodeJSON(w, r, &input) {
		return
	}

	ws, _ := workspaceFor(h.workspaces, r)
	if needsLoad(ws.Admins.Loaded(), ws.Admins.Err()) {
		if _, err := ws.Admins.LoadAll(r.Context()); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}

	admin, err := ws.Coordinator.CreateAdmin(r.Context(), input)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

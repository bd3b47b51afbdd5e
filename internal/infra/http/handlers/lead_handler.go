package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stone-realestate/leadops/internal/infra/database"
	"github.com/stone-realestate/leadops/internal/infra/export"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

// AuditReader lists the recorded trail of one record.
type AuditReader interface {
	ListByTarget(ctx context.Context, resource, targetID string, limit int) ([]database.AuditRecord, error)
}

type LeadHandler struct {
	workspaces WorkspaceOpener
	pageSize   int
	audit      AuditReader
	errors     errorWriter
	logger     *zap.Logger
}

func NewLeadHandler(workspaces WorkspaceOpener, sessions SessionCloser, pageSize int, audit AuditReader, logger *zap.Logger) *LeadHandler {
	if pageSize <= 0 {
		pageSize = usecase.DefaultViewPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("handler", "leads"))
	return &LeadHandler{
		workspaces: workspaces,
		pageSize:   pageSize,
		audit:      audit,
		errors:     errorWriter{sessions: sessions, logger: logger},
		logger:     logger,
	}
}

type LeadListResponse struct {
	Rows      []usecase.LeadRow `json:"rows"`
	Leads     []entity.Lead     `json:"leads"`
	View      usecase.ViewState `json:"view"`
	Page      int               `json:"page"`
	PageSize  int               `json:"page_size"`
	PageCount int               `json:"page_count"`
	Total     int               `json:"total"`
}

// List renders the current page. Query parameters q, sort, dir, toggle and
// page update the session's view state before projecting.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, _ := workspaceFor(h.workspaces, r)
	if needsLoad(ws.Leads.Loaded(), ws.Leads.Err()) {
		if _, err := ws.Leads.LoadAll(r.Context()); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}

	update, err := viewUpdate(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	view := ws.UpdateView(update)

	page := usecase.Project(ws.Leads.Snapshot(), view, h.pageSize)
	writeJSON(w, http.StatusOK, LeadListResponse{
		Rows:      usecase.LeadRows(page),
		Leads:     page.Leads,
		View:      view,
		Page:      page.Page,
		PageSize:  page.PageSize,
		PageCount: page.PageCount,
		Total:     page.Total,
	})
}

func viewUpdate(r *http.Request) (func(*usecase.ViewState), error) {
	q := r.URL.Query()

	var steps []func(*usecase.ViewState)
	if values, ok := q["q"]; ok {
		query := values[0]
		steps = append(steps, func(v *usecase.ViewState) { v.SetQuery(query) })
	}
	if raw := q.Get("toggle"); raw != "" {
		key := usecase.SortKey(raw)
		if !usecase.ValidSortKey(key) {
			return nil, fmt.Errorf("unknown sort key %q", raw)
		}
		steps = append(steps, func(v *usecase.ViewState) { v.ToggleSort(key) })
	} else if values, ok := q["sort"]; ok {
		key := usecase.SortKey(values[0])
		if !usecase.ValidSortKey(key) {
			return nil, fmt.Errorf("unknown sort key %q", values[0])
		}
		dir := usecase.SortDir(strings.ToLower(q.Get("dir")))
		if dir != "" && dir != usecase.SortAsc && dir != usecase.SortDesc {
			return nil, fmt.Errorf("unknown sort direction %q", dir)
		}
		steps = append(steps, func(v *usecase.ViewState) { v.SetSort(key, dir) })
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("page must be a number")
		}
		steps = append(steps, func(v *usecase.ViewState) { v.SetPage(page) })
	}

	return func(v *usecase.ViewState) {
		for _, step := range steps {
			step(v)
		}
	}, nil
}

type RefreshResponse struct {
	Count int `json:"count"`
}

func (h *LeadHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ws, _ := workspaceFor(h.workspaces, r)
	leads, err := ws.Leads.LoadAll(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Count: len(leads)})
}

type UpdateLeadRequest struct {
	usecase.ContactPatch
	Status string `json:"status"`
}

func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ws, _ := workspaceFor(h.workspaces, r)
	// Omitted fields are filled from the stored lead, so it has to be loaded.
	if needsLoad(ws.Leads.Loaded(), ws.Leads.Err()) {
		if _, err := ws.Leads.LoadAll(r.Context()); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}
	lead, err := ws.Coordinator.UpdateLead(r.Context(), chi.URLParam(r, "id"), req.ContactPatch, req.Status)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// Delete requires confirm=true; without it the response carries the prompt.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	ws, _ := workspaceFor(h.workspaces, r)
	if err := ws.Coordinator.DeleteLead(r.Context(), chi.URLParam(r, "id"), usecase.Confirmed(confirmed)); err != nil {
		h.errors.write(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export downloads every lead matching the current view, in view order.
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	ws, _ := workspaceFor(h.workspaces, r)
	if needsLoad(ws.Leads.Loaded(), ws.Leads.Err()) {
		if _, err := ws.Leads.LoadAll(r.Context()); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}

	data, err := export.Leads(usecase.ProjectAll(ws.Leads.Snapshot(), ws.View()))
	if err != nil {
		h.logger.Error("lead export failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to build the export.")
		return
	}

	filename := fmt.Sprintf("leads-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *LeadHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "AUDIT_DISABLED", "The audit trail is not configured.")
		return
	}
	records, err := h.audit.ListByTarget(r.Context(), "lead", chi.URLParam(r, "id"), 50)
	if err != nil {
		h.logger.Error("audit query failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "AUDIT_FAILED", "Failed to load the audit trail.")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

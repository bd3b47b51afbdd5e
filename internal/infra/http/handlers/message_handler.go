package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

type MessageHandler struct {
	workspaces WorkspaceOpener
	errors     errorWriter
}

func NewMessageHandler(workspaces WorkspaceOpener, sessions SessionCloser, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{
		workspaces: workspaces,
		errors:     errorWriter{sessions: sessions, logger: logger.With(zap.String("handler", "messages"))},
	}
}

type MessageListResponse struct {
	Messages []entity.Message `json:"messages"`
	Total    int              `json:"total"`
}

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, _ := workspaceFor(h.workspaces, r)
	if needsLoad(ws.Messages.Loaded(), ws.Messages.Err()) {
		if _, err := ws.Messages.LoadAll(r.Context()); err != nil {
			h.errors.write(w, r, err)
			return
		}
	}
	messages := ws.Messages.Snapshot()
	writeJSON(w, http.StatusOK, MessageListResponse{Messages: messages, Total: len(messages)})
}

func (h *MessageHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ws, _ := workspaceFor(h.workspaces, r)
	messages, err := ws.Messages.LoadAll(r.Context())
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Count: len(messages)})
}

func (h *MessageHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req usecase.UpdateMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ws, _ := workspaceFor(h.workspaces, r)
	msg, err := ws.Coordinator.UpdateMessage(r.Context(), chi.URLParam(r, "id"), req.Message)
	if err != nil {
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

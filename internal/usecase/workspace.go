package usecase

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Workspace is the dashboard state of one session: its directories, the
// lead table view and the coordinator that mutates them.
type Workspace struct {
	Session     Session
	Leads       *LeadDirectory
	Admins      *AdminDirectory
	Messages    *MessageDirectory
	Coordinator *MutationCoordinator

	viewMu sync.Mutex
	view   ViewState
}

// UpdateView applies fn to the view state and returns the result.
func (w *Workspace) UpdateView(fn func(*ViewState)) ViewState {
	w.viewMu.Lock()
	defer w.viewMu.Unlock()
	if fn != nil {
		fn(&w.view)
	}
	return w.view
}

func (w *Workspace) View() ViewState {
	return w.UpdateView(nil)
}

type WorkspaceConfig struct {
	FetchPageSize  int
	MessageTimeout time.Duration
	Events         EventPublisher
	Audit          AuditRecorder
	Recorder       Recorder
	Logger         *zap.Logger
}

// Workspaces keeps one Workspace per session id.
type Workspaces struct {
	mu      sync.Mutex
	byID    map[string]*Workspace
	backend BackendFactory
	cfg     WorkspaceConfig
}

func NewWorkspaces(backend BackendFactory, cfg WorkspaceConfig) *Workspaces {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Workspaces{byID: make(map[string]*Workspace), backend: backend, cfg: cfg}
}

// Open returns the workspace of session, creating it on first use.
func (ws *Workspaces) Open(session Session) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if w, ok := ws.byID[session.ID]; ok && w.Session.Token == session.Token {
		w.Session = session
		return w
	}

	backend := ws.backend(session.Token)
	logger := ws.cfg.Logger.With(zap.String("session_id", session.ID))
	opts := DirectoryOptions{PageSize: ws.cfg.FetchPageSize, Logger: logger, Recorder: ws.cfg.Recorder}
	msgOpts := opts
	msgOpts.Timeout = ws.cfg.MessageTimeout

	w := &Workspace{
		Session:  session,
		Leads:    NewLeadDirectory(backend, opts),
		Admins:   NewAdminDirectory(backend, opts),
		Messages: NewMessageDirectory(backend, msgOpts),
	}
	w.Coordinator = NewMutationCoordinator(session, backend, w.Leads, w.Admins, w.Messages, CoordinatorDeps{
		Events:   ws.cfg.Events,
		Audit:    ws.cfg.Audit,
		Recorder: ws.cfg.Recorder,
		Logger:   logger,
	})
	ws.byID[session.ID] = w
	return w
}

func (ws *Workspaces) Close(sessionID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.byID, sessionID)
}

func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.byID)
}

// IDs returns the session ids that currently hold a workspace.
func (ws *Workspaces) IDs() []string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ids := make([]string, 0, len(ws.byID))
	for id := range ws.byID {
		ids = append(ids, id)
	}
	return ids
}

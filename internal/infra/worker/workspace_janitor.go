package worker

import (
	"context"
	"errors"
	"time"

	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

// WorkspaceSet is the part of usecase.Workspaces the janitor drives.
type WorkspaceSet interface {
	IDs() []string
	Close(sessionID string)
}

// WorkspaceJanitor drops in-memory workspaces whose session has expired
// from the session store.
type WorkspaceJanitor struct {
	sessions     usecase.SessionStore
	workspaces   WorkspaceSet
	tickInterval time.Duration
	logger       *zap.Logger
}

func NewWorkspaceJanitor(sessions usecase.SessionStore, workspaces WorkspaceSet, interval time.Duration, logger *zap.Logger) *WorkspaceJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkspaceJanitor{
		sessions:     sessions,
		workspaces:   workspaces,
		tickInterval: interval,
		logger:       logger.With(zap.String("component", "workspace_janitor")),
	}
}

func (j *WorkspaceJanitor) Start(ctx context.Context) {
	j.logger.Info("workspace janitor started", zap.Duration("interval", j.tickInterval))

	ticker := time.NewTicker(j.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("workspace janitor stopped")
			return
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep closes every workspace whose session is gone and returns how many
// were closed. Store errors leave the workspace in place.
func (j *WorkspaceJanitor) Sweep(ctx context.Context) int {
	closed := 0
	for _, id := range j.workspaces.IDs() {
		_, err := j.sessions.Get(ctx, id)
		switch {
		case err == nil:
		case errors.Is(err, usecase.ErrSessionNotFound):
			j.workspaces.Close(id)
			closed++
		default:
			j.logger.Warn("session lookup failed", zap.String("session_id", id), zap.Error(err))
		}
	}
	if closed > 0 {
		j.logger.Info("expired workspaces closed", zap.Int("count", closed))
	}
	return closed
}

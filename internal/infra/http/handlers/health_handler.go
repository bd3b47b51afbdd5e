package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger reports whether a dependency answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks     map[string]Pinger
	backendURL string
	StartTime  time.Time
	Version    string
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler takes one optional Pinger per dependency name. A nil entry
// is reported as not configured.
func NewHealthHandler(checks map[string]Pinger, backendURL string) *HealthHandler {
	return &HealthHandler{
		checks:     checks,
		backendURL: backendURL,
		StartTime:  time.Now(),
		Version:    "1.0.0",
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.checks)+1)
	for name, check := range h.checks {
		if check == nil {
			deps[name] = "not configured"
			continue
		}
		if err := check.Ping(ctx); err != nil {
			deps[name] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps[name] = "healthy"
		}
	}

	if h.backendURL != "" {
		deps["backend"] = "configured"
	} else {
		deps["backend"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

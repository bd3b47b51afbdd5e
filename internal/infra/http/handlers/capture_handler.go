package handlers

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

// LeadCapturer forwards a public enquiry. *usecase.CaptureService satisfies it.
type LeadCapturer interface {
	Submit(ctx context.Context, input usecase.CaptureInput) error
}

type CaptureHandler struct {
	capture     LeadCapturer
	rateLimiter *RateLimiter
	errors      errorWriter
}

func NewCaptureHandler(capture LeadCapturer, limiter *RateLimiter, logger *zap.Logger) *CaptureHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureHandler{
		capture:     capture,
		rateLimiter: limiter,
		errors:      errorWriter{logger: logger.With(zap.String("handler", "capture"))},
	}
}

type CaptureLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (h *CaptureHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, CaptureLeadResponse{
			Success: false,
			Message: "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.CaptureInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if err := h.capture.Submit(r.Context(), input); err != nil {
		h.errors.write(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, CaptureLeadResponse{
		Success: true,
		Message: "Thanks! We'll be in touch shortly.",
	})
}

// getClientIP keys the limiter on RemoteAddr only; forwarding headers are
// resolved once by the RealIP middleware in front of the router.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// RateLimiter allows limit requests per key in each fixed window.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	now := rl.now()

	if !exists {
		rl.visitors[key] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// Run drops idle visitors every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, key)
		}
	}
}

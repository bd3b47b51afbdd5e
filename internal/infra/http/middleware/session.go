package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

const (
	SessionCookie = "leadops_session"
	sessionScheme = "Session "
)

type sessionKey struct{}

// SessionResolver looks a session id up. *usecase.AuthService satisfies it.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (usecase.Session, error)
}

// RequireSession rejects requests without a live session and stores the
// session in the request context.
func RequireSession(resolver SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionID(r)
			if id == "" {
				unauthorized(w, "Not signed in.")
				return
			}

			session, err := resolver.Resolve(r.Context(), id)
			if err != nil {
				if !errors.Is(err, usecase.ErrSessionNotFound) {
					logger.Error("session lookup failed", zap.Error(err))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusServiceUnavailable)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "SESSION_STORE_UNAVAILABLE", "message": "Please try again shortly."})
					return
				}
				unauthorized(w, "Your session has expired. Please sign in again.")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// SessionID reads the session id from the cookie or the Authorization header.
func SessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, sessionScheme) {
		return strings.TrimSpace(strings.TrimPrefix(auth, sessionScheme))
	}
	return ""
}

func WithSession(ctx context.Context, s usecase.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (usecase.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(usecase.Session)
	return s, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "UNAUTHORIZED", "message": message})
}

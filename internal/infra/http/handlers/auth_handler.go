package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stone-realestate/leadops/internal/infra/http/middleware"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

// Authenticator is the part of *usecase.AuthService the handlers use.
type Authenticator interface {
	SessionCloser
	Login(ctx context.Context, username, password string) (usecase.Session, error)
	Me(ctx context.Context, session usecase.Session) (usecase.Session, error)
}

type AuthHandler struct {
	auth          Authenticator
	secureCookies bool
	sessionTTL    time.Duration
	errors        errorWriter
}

func NewAuthHandler(auth Authenticator, secureCookies bool, sessionTTL time.Duration, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		auth:          auth,
		secureCookies: secureCookies,
		sessionTTL:    sessionTTL,
		errors:        errorWriter{sessions: auth, logger: logger.With(zap.String("handler", "auth"))},
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	SessionID string          `json:"session_id"`
	User      entity.Identity `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		// login failures never end another session
		var apiErr *usecase.APIError
		if errors.As(err, &apiErr) {
			status := http.StatusBadGateway
			switch apiErr.Status {
			case http.StatusUnauthorized, http.StatusBadRequest:
				status = apiErr.Status
			}
			writeErrorResponse(w, status, "LOGIN_FAILED", apiErr.Message)
			return
		}
		h.errors.write(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessionTTL.Seconds()),
	})
	writeJSON(w, http.StatusOK, LoginResponse{SessionID: session.ID, User: session.User})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	if err := h.auth.Logout(r.Context(), session.ID); err != nil {
		h.errors.write(w, r, err)
		return
	}
	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type ProfileResponse struct {
	Fields []usecase.ProfileField `json:"fields"`
}

// Profile refreshes the identity from the backend before rendering it.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFrom(r.Context())
	refreshed, err := h.auth.Me(r.Context(), session)
	if err != nil {
		if usecase.IsUnauthorized(err) {
			clearSessionCookie(w)
			writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Your session has expired. Please sign in again.")
			return
		}
		h.errors.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{Fields: usecase.ProfileFields(refreshed.User)})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

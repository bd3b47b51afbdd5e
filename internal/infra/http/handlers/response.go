package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stone-realestate/leadops/internal/infra/http/middleware"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SessionCloser ends a session. *usecase.AuthService satisfies it.
type SessionCloser interface {
	Logout(ctx context.Context, sessionID string) error
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON")
		return false
	}
	return true
}

// errorWriter maps usecase errors to responses. A backend 401 also ends the
// session that made the call.
type errorWriter struct {
	sessions SessionCloser
	logger   *zap.Logger
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	var validation usecase.ValidationErrors
	var apiErr *usecase.APIError
	var domain *usecase.DomainError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Message: validation.Error(),
			Fields:  validation.Fields(),
		})

	case errors.As(err, &apiErr):
		e.writeAPIError(w, r, apiErr)

	case errors.As(err, &domain):
		status := http.StatusBadRequest
		message := domain.Message
		switch domain {
		case usecase.ErrNotConfirmed:
			status = http.StatusPreconditionFailed
			message = usecase.DeleteLeadPrompt
		case usecase.ErrLeadNotFound:
			status = http.StatusNotFound
		case usecase.ErrSessionNotFound:
			status = http.StatusUnauthorized
		case usecase.ErrLoadSuperseded:
			status = http.StatusConflict
		}
		writeErrorResponse(w, status, domain.Code, message)

	default:
		e.logger.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong. Please try again.")
	}
}

func (e errorWriter) writeAPIError(w http.ResponseWriter, r *http.Request, apiErr *usecase.APIError) {
	code := apiErr.Code
	switch apiErr.Kind {
	case usecase.KindUnauthorized:
		if s, ok := middleware.SessionFrom(r.Context()); ok && e.sessions != nil {
			if err := e.sessions.Logout(r.Context(), s.ID); err != nil {
				e.logger.Error("failed to drop session", zap.Error(err))
			}
			clearSessionCookie(w)
		}
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "Your session has expired. Please sign in again.")

	case usecase.KindConflict:
		if code == "" {
			code = "CONFLICT"
		}
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: code, Message: apiErr.Message, Fields: apiErr.Fields})

	case usecase.KindServer:
		if code == "" {
			code = "BACKEND_ERROR"
		}
		writeErrorResponse(w, http.StatusBadGateway, code, apiErr.Message)

	default:
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		if code == "" {
			code = "BACKEND_ERROR"
		}
		writeErrorResponse(w, status, code, apiErr.Message)
	}
}

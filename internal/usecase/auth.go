package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MsgBadCredentials = "Incorrect username or password."
	MsgInvalidInput   = "Invalid input."
	MsgLoginFailed    = "Login failed. Please try again."
)

type AuthService struct {
	gateway    AuthGateway
	sessions   SessionStore
	workspaces *Workspaces
	logger     *zap.Logger
	now        func() time.Time
}

func NewAuthService(gateway AuthGateway, sessions SessionStore, workspaces *Workspaces, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		gateway:    gateway,
		sessions:   sessions,
		workspaces: workspaces,
		logger:     logger.With(zap.String("component", "auth")),
		now:        time.Now,
	}
}

// Login exchanges credentials for a backend token and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var errs ValidationErrors
	if username == "" {
		errs = append(errs, ValidationError{"username", "is required"})
	}
	if password == "" {
		errs = append(errs, ValidationError{"password", "is required"})
	}
	if len(errs) > 0 {
		return Session{}, errs
	}

	result, err := s.gateway.Login(ctx, username, password)
	if err != nil {
		apiErr := loginError(err)
		s.logger.Warn("login failed", zap.String("username", username), zap.Int("status", apiErr.Status))
		return Session{}, apiErr
	}
	if result.Token == "" {
		return Session{}, &APIError{Kind: KindUnknown, Message: MsgLoginFailed}
	}

	session := Session{
		ID:        uuid.NewString(),
		Token:     result.Token,
		CreatedAt: s.now().UTC(),
	}
	if result.User != nil {
		session.User = *result.User
	} else {
		user, err := s.gateway.Me(ctx, result.Token)
		if err != nil {
			return Session{}, loginError(err)
		}
		session.User = user
	}
	if session.User.Username == "" {
		session.User.Username = username
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return Session{}, err
	}
	s.logger.Info("session opened", zap.String("session_id", session.ID), zap.String("username", session.User.Username))
	return session, nil
}

// Logout removes the session and its workspace. Unknown ids are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if s.workspaces != nil {
		s.workspaces.Close(sessionID)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	s.logger.Info("session closed", zap.String("session_id", sessionID))
	return nil
}

// Resolve loads a session by id.
func (s *AuthService) Resolve(ctx context.Context, sessionID string) (Session, error) {
	if sessionID == "" {
		return Session{}, ErrSessionNotFound
	}
	return s.sessions.Get(ctx, sessionID)
}

// Me refreshes the identity of a session. A rejected token ends the session.
func (s *AuthService) Me(ctx context.Context, session Session) (Session, error) {
	user, err := s.gateway.Me(ctx, session.Token)
	if err != nil {
		apiErr := ClassifyError(err)
		if apiErr.Kind == KindUnauthorized {
			if logoutErr := s.Logout(ctx, session.ID); logoutErr != nil {
				s.logger.Error("failed to drop session", zap.Error(logoutErr))
			}
		}
		return Session{}, apiErr
	}
	session.User = user
	if err := s.sessions.Save(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func loginError(err error) *APIError {
	apiErr := ClassifyError(err)
	out := *apiErr
	switch apiErr.Status {
	case http.StatusUnauthorized:
		out.Message = MsgBadCredentials
	case http.StatusBadRequest:
		out.Message = MsgInvalidInput
	default:
		out.Message = MsgLoginFailed
	}
	return &out
}

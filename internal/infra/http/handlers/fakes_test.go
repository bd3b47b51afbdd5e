package handlers

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stone-realestate/leadops/internal/infra/database"
	"github.com/stone-realestate/leadops/internal/infra/http/middleware"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

type backendError struct {
	status  int
	code    string
	message string
}

func (e *backendError) Error() string        { return fmt.Sprintf("%d %s", e.status, e.message) }
func (e *backendError) HTTPStatus() int      { return e.status }
func (e *backendError) ErrorCode() string    { return e.code }
func (e *backendError) ErrorMessage() string { return e.message }

// fakeBackend is an in-memory stand-in for the REST backend.
type fakeBackend struct {
	mu         sync.Mutex
	leads      []entity.Lead
	admins     []entity.Admin
	messages   []entity.Message
	listErr    error
	mutateErr  error
	deleted    []string
	captured   []usecase.CaptureRequest
	loginErr   error
	lastUpdate usecase.UpdateLeadRequest
}

func (f *fakeBackend) ListLeads(_ context.Context, limit, offset int) ([]entity.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return pageOf(f.leads, limit, offset), nil
}

func (f *fakeBackend) UpdateLead(_ context.Context, _ string, req usecase.UpdateLeadRequest) (*entity.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = req
	return nil, f.mutateErr
}

func (f *fakeBackend) DeleteLead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.deleted = append(f.deleted, id)
	f.leads = slices.DeleteFunc(f.leads, func(l entity.Lead) bool { return l.ID == id })
	return nil
}

func (f *fakeBackend) ListAdmins(_ context.Context, limit, offset int) ([]entity.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return pageOf(f.admins, limit, offset), nil
}

func (f *fakeBackend) CreateAdmin(_ context.Context, input usecase.CreateAdminInput) (*entity.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	return &entity.Admin{ID: "a-new", Username: input.Username}, nil
}

func (f *fakeBackend) ListMessages(_ context.Context, limit, offset int) ([]entity.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return pageOf(f.messages, limit, offset), nil
}

func (f *fakeBackend) UpdateMessage(context.Context, string, usecase.UpdateMessageRequest) (*entity.Message, error) {
	return nil, f.mutateErr
}

func (f *fakeBackend) Login(_ context.Context, username, password string) (usecase.LoginResult, error) {
	if f.loginErr != nil {
		return usecase.LoginResult{}, f.loginErr
	}
	if password != "secret" {
		return usecase.LoginResult{}, &backendError{status: http.StatusUnauthorized, message: "bad credentials"}
	}
	return usecase.LoginResult{Token: "tok-" + username, User: &entity.Identity{ID: "u-1", Username: username, Role: "admin"}}, nil
}

func (f *fakeBackend) Me(_ context.Context, token string) (entity.Identity, error) {
	if f.listErr != nil {
		return entity.Identity{}, f.listErr
	}
	return entity.Identity{ID: "u-1", Username: "sam", Email: "sam@example.com", FirstName: "Sam", LastName: "Lee", Role: "admin"}, nil
}

func (f *fakeBackend) SubmitLead(_ context.Context, req usecase.CaptureRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captured = append(f.captured, req)
	return nil
}

func pageOf[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	return slices.Clone(items[offset:min(offset+limit, len(items))])
}

type memSessions struct {
	mu   sync.Mutex
	byID map[string]usecase.Session
}

func (m *memSessions) Save(_ context.Context, s usecase.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.ID] = s
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (usecase.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return usecase.Session{}, usecase.ErrSessionNotFound
	}
	return s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

type fakeAudit struct {
	records []database.AuditRecord
}

func (f fakeAudit) ListByTarget(_ context.Context, resource, targetID string, _ int) ([]database.AuditRecord, error) {
	var out []database.AuditRecord
	for _, r := range f.records {
		if r.Resource == resource && r.TargetID == targetID {
			out = append(out, r)
		}
	}
	return out, nil
}

type testServer struct {
	backend    *fakeBackend
	sessions   *memSessions
	workspaces *usecase.Workspaces
	router     http.Handler
	sessionID  string
}

func seedLeads(n int) []entity.Lead {
	leads := make([]entity.Lead, n)
	for i := range leads {
		score := float64(i * 15)
		leads[i] = entity.Lead{
			ID:      fmt.Sprintf("l-%d", i),
			Contact: entity.Contact{FirstName: fmt.Sprintf("Lead%d", i), LastName: "Smith", Email: fmt.Sprintf("lead%d@example.com", i), Selling: entity.TriNo, Buying: entity.TriUnknown},
			Score:   &score,
			Status:  "new",
		}
	}
	return leads
}

func newTestServer(backend *fakeBackend, audit AuditReader) *testServer {
	logger := zap.NewNop()
	sessions := &memSessions{byID: map[string]usecase.Session{}}
	workspaces := usecase.NewWorkspaces(
		func(string) usecase.Backend { return backend },
		usecase.WorkspaceConfig{FetchPageSize: 3, MessageTimeout: time.Second, Logger: logger},
	)
	auth := usecase.NewAuthService(backend, sessions, workspaces, logger)

	authHandler := NewAuthHandler(auth, false, time.Hour, logger)
	leadHandler := NewLeadHandler(workspaces, auth, 5, audit, logger)
	adminHandler := NewAdminHandler(workspaces, auth, logger)
	messageHandler := NewMessageHandler(workspaces, auth, logger)
	captureHandler := NewCaptureHandler(usecase.NewCaptureService(backend, logger), NewRateLimiter(2, time.Minute), logger)

	r := chi.NewRouter()
	r.Post("/api/auth/login", authHandler.Login)
	r.Post("/api/capture", captureHandler.CaptureLead)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(auth, logger))
		r.Post("/api/auth/logout", authHandler.Logout)
		r.Get("/api/profile", authHandler.Profile)
		r.Get("/api/leads", leadHandler.List)
		r.Post("/api/leads/refresh", leadHandler.Refresh)
		r.Get("/api/leads/export", leadHandler.Export)
		r.Patch("/api/leads/{id}", leadHandler.Update)
		r.Delete("/api/leads/{id}", leadHandler.Delete)
		r.Get("/api/leads/{id}/audit", leadHandler.Audit)
		r.Get("/api/admins", adminHandler.List)
		r.Post("/api/admins", adminHandler.Create)
		r.Post("/api/admins/refresh", adminHandler.Refresh)
		r.Get("/api/messages", messageHandler.List)
		r.Post("/api/messages/refresh", messageHandler.Refresh)
		r.Patch("/api/messages/{id}", messageHandler.Update)
	})

	session, err := auth.Login(context.Background(), "sam", "secret")
	if err != nil {
		panic(err)
	}

	return &testServer{backend: backend, sessions: sessions, workspaces: workspaces, router: r, sessionID: session.ID}
}

package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stretchr/testify/mock"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) ListLeads(ctx context.Context, limit, offset int) ([]entity.Lead, error) {
	args := m.Called(ctx, limit, offset)
	leads, _ := args.Get(0).([]entity.Lead)
	return leads, args.Error(1)
}

func (m *MockBackend) UpdateLead(ctx context.Context, id string, req UpdateLeadRequest) (*entity.Lead, error) {
	args := m.Called(ctx, id, req)
	lead, _ := args.Get(0).(*entity.Lead)
	return lead, args.Error(1)
}

func (m *MockBackend) DeleteLead(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackend) ListAdmins(ctx context.Context, limit, offset int) ([]entity.Admin, error) {
	args := m.Called(ctx, limit, offset)
	admins, _ := args.Get(0).([]entity.Admin)
	return admins, args.Error(1)
}

func (m *MockBackend) CreateAdmin(ctx context.Context, input CreateAdminInput) (*entity.Admin, error) {
	args := m.Called(ctx, input)
	admin, _ := args.Get(0).(*entity.Admin)
	return admin, args.Error(1)
}

func (m *MockBackend) ListMessages(ctx context.Context, limit, offset int) ([]entity.Message, error) {
	args := m.Called(ctx, limit, offset)
	messages, _ := args.Get(0).([]entity.Message)
	return messages, args.Error(1)
}

func (m *MockBackend) UpdateMessage(ctx context.Context, id string, req UpdateMessageRequest) (*entity.Message, error) {
	args := m.Called(ctx, id, req)
	msg, _ := args.Get(0).(*entity.Message)
	return msg, args.Error(1)
}

type MockAuthGateway struct {
	mock.Mock
}

func (m *MockAuthGateway) Login(ctx context.Context, username, password string) (LoginResult, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(LoginResult), args.Error(1)
}

func (m *MockAuthGateway) Me(ctx context.Context, token string) (entity.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(entity.Identity), args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishLeadEvent(ctx context.Context, event LeadEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) PublishAdminCreated(ctx context.Context, event AdminEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) PublishMessageUpdated(ctx context.Context, event MessageEvent) error {
	return m.Called(ctx, event).Error(0)
}

type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]Session{}}
}

func (s *memSessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// httpError mimics the backend client's error type.
type httpError struct {
	status  int
	code    string
	message string
}

func (e *httpError) Error() string        { return fmt.Sprintf("backend returned %d: %s", e.status, e.message) }
func (e *httpError) HTTPStatus() int      { return e.status }
func (e *httpError) ErrorCode() string    { return e.code }
func (e *httpError) ErrorMessage() string { return e.message }

func ptr[T any](v T) *T { return &v }

func testLead(id, first string, score float64) entity.Lead {
	s := score
	return entity.Lead{
		ID:      id,
		Contact: entity.Contact{FirstName: first, LastName: "Smith", Email: first + "@example.com"},
		Score:   &s,
		Status:  "new",
	}
}

func deletedLead(id string) entity.Lead {
	lead := testLead(id, "gone", 10)
	lead.Metadata.DeletedAt = entity.TimestampOf("2024-01-01T00:00:00Z")
	return lead
}

func leadPage(prefix string, n int) []entity.Lead {
	out := make([]entity.Lead, 0, n)
	for i := range n {
		out = append(out, testLead(fmt.Sprintf("%s-%d", prefix, i), fmt.Sprintf("%s%d", prefix, i), float64(i)))
	}
	return out
}

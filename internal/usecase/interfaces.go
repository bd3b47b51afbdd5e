package usecase

import (
	"context"

	"github.com/stone-realestate/leadops/internal/entity"
)

type LeadGateway interface {
	ListLeads(ctx context.Context, limit, offset int) ([]entity.Lead, error)
	// UpdateLead returns nil when the backend answered with an empty body.
	UpdateLead(ctx context.Context, id string, req UpdateLeadRequest) (*entity.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

type AdminGateway interface {
	ListAdmins(ctx context.Context, limit, offset int) ([]entity.Admin, error)
	CreateAdmin(ctx context.Context, input CreateAdminInput) (*entity.Admin, error)
}

type MessageGateway interface {
	ListMessages(ctx context.Context, limit, offset int) ([]entity.Message, error)
	UpdateMessage(ctx context.Context, id string, req UpdateMessageRequest) (*entity.Message, error)
}

// Backend is the authenticated view of the REST backend for one session.
type Backend interface {
	LeadGateway
	AdminGateway
	MessageGateway
}

// BackendFactory binds a backend client to a session token.
type BackendFactory func(token string) Backend

type AuthGateway interface {
	Login(ctx context.Context, username, password string) (LoginResult, error)
	Me(ctx context.Context, token string) (entity.Identity, error)
}

type CaptureGateway interface {
	SubmitLead(ctx context.Context, req CaptureRequest) error
}

type SessionStore interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event LeadEvent) error
	PublishAdminCreated(ctx context.Context, event AdminEvent) error
	PublishMessageUpdated(ctx context.Context, event MessageEvent) error
}

type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Confirmed is a Confirmer with a fixed answer.
type Confirmed bool

func (c Confirmed) Confirm(context.Context, string) bool { return bool(c) }

// Recorder receives load and mutation outcomes for metrics.
type Recorder interface {
	ObserveLoad(resource string, count int, err error)
	ObserveMutation(kind string, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveLoad(string, int, error) {}
func (nopRecorder) ObserveMutation(string, error)  {}

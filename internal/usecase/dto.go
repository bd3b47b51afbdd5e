package usecase

import "github.com/stone-realestate/leadops/internal/entity"

// ContactPatch carries the edited contact fields of a lead. A nil field was
// not edited and keeps the value of the stored record.
type ContactPatch struct {
	FirstName *string          `json:"first_name,omitempty"`
	LastName  *string          `json:"last_name,omitempty"`
	Email     *string          `json:"email,omitempty"`
	Phone     *string          `json:"phone,omitempty"`
	Suburb    *string          `json:"suburb,omitempty"`
	Timeframe *string          `json:"timeframe,omitempty"`
	Selling   *entity.TriState `json:"selling,omitempty"`
	Buying    *entity.TriState `json:"buying,omitempty"`
	Score     *float64         `json:"score,omitempty"`
}

type ContactBody struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Suburb    string   `json:"suburb"`
	Timeframe string   `json:"timeframe"`
	Selling   bool     `json:"selling_interest"`
	Buying    bool     `json:"buying_interest"`
	Score     *float64 `json:"score,omitempty"`
}

type StatusChange struct {
	Current   string `json:"current"`
	Notes     string `json:"notes"`
	ChangedBy string `json:"changed_by"`
}

// UpdateLeadRequest is the PATCH body sent for a lead edit.
type UpdateLeadRequest struct {
	Contact ContactBody   `json:"contact"`
	Status  *StatusChange `json:"status,omitempty"`
}

type CreateAdminInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type UpdateMessageRequest struct {
	Message string `json:"message"`
}

type LoginResult struct {
	Token string
	User  *entity.Identity
}

// CaptureInput is the public landing form.
type CaptureInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Suburb    string `json:"suburb"`
	Timeframe string `json:"timeframe"`
	Selling   string `json:"selling"`
	Buying    string `json:"buying"`
	Message   string `json:"message"`
}

// CaptureRequest is what the public lead endpoint of the backend expects.
type CaptureRequest struct {
	Contact  CaptureContact `json:"contact"`
	Message  string         `json:"message,omitempty"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type CaptureContact struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Suburb          string `json:"suburb,omitempty"`
	Timeframe       string `json:"timeframe,omitempty"`
	SellingInterest bool   `json:"selling_interest"`
	BuyingInterest  bool   `json:"buying_interest"`
}

// LeadEvent is published after a successful lead mutation.
type LeadEvent struct {
	LeadID    string `json:"lead_id"`
	Action    string `json:"action"`
	Status    string `json:"status,omitempty"`
	ChangedBy string `json:"changed_by"`
}

type AdminEvent struct {
	AdminID   string `json:"admin_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CreatedBy string `json:"created_by"`
}

type MessageEvent struct {
	MessageID string `json:"message_id"`
	ChangedBy string `json:"changed_by"`
}

// AuditEntry is one row of the staff mutation trail.
type AuditEntry struct {
	Actor    string
	Action   string
	Resource string
	TargetID string
	Details  map[string]any
}

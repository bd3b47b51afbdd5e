package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stone-realestate/leadops/internal/entity"
	"go.uber.org/zap"
)

const DeleteLeadPrompt = "Are you sure you want to delete this lead?"

// MutationCoordinator sends edits to the backend and applies successful
// answers to the session's directories. A failed call never changes them.
type MutationCoordinator struct {
	session  Session
	backend  Backend
	leads    *LeadDirectory
	admins   *AdminDirectory
	messages *MessageDirectory
	events   EventPublisher
	audit    AuditRecorder
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

type CoordinatorDeps struct {
	Events   EventPublisher
	Audit    AuditRecorder
	Recorder Recorder
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewMutationCoordinator(
	session Session,
	backend Backend,
	leads *LeadDirectory,
	admins *AdminDirectory,
	messages *MessageDirectory,
	deps CoordinatorDeps,
) *MutationCoordinator {
	c := &MutationCoordinator{
		session:  session,
		backend:  backend,
		leads:    leads,
		admins:   admins,
		messages: messages,
		events:   deps.Events,
		audit:    deps.Audit,
		recorder: deps.Recorder,
		logger:   deps.Logger,
		now:      deps.Now,
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.logger = c.logger.With(zap.String("component", "mutation"), zap.String("actor", session.Actor()))
	return c
}

// UpdateLead patches the contact block and, when status is not blank, the
// status of a lead. Contact fields left nil keep their stored values, so the
// backend always receives the full contact block.
func (c *MutationCoordinator) UpdateLead(ctx context.Context, id string, patch ContactPatch, status string) (entity.Lead, error) {
	patch = normalizeContactPatch(patch)
	if errs := ValidateContactPatch(patch); len(errs) > 0 {
		return entity.Lead{}, errs
	}

	current, _ := c.leads.Find(id)
	contact := applyContactPatch(current.Contact, patch)
	req := UpdateLeadRequest{Contact: contactBody(contact, patch.Score)}
	if status = strings.TrimSpace(status); status != "" {
		req.Status = &StatusChange{
			Current:   status,
			Notes:     statusNote(status, c.session.Actor()),
			ChangedBy: c.session.Actor(),
		}
	}

	updated, err := c.backend.UpdateLead(ctx, id, req)
	c.recorder.ObserveMutation("lead_update", err)
	if err != nil {
		apiErr := ClassifyError(err)
		c.logger.Warn("lead update failed", zap.String("lead_id", id), zap.Error(apiErr))
		return entity.Lead{}, apiErr
	}

	now := c.now()
	local := mergeLead(current, id, contact, patch.Score, status)
	var lead entity.Lead
	if updated == nil {
		lead = local
		lead.Metadata.UpdatedAt = entity.NewTimestamp(now)
	} else {
		lead = overlayLead(local, *updated)
		lead.Touch(now)
	}
	c.leads.ApplyPatch(lead)

	c.logger.Info("lead updated", zap.String("lead_id", id), zap.String("status", lead.Status))
	c.record(ctx, "lead.update", "lead", id, map[string]any{"status": status, "email": contact.Email})
	c.publishLead(ctx, LeadEvent{LeadID: id, Action: "updated", Status: lead.Status, ChangedBy: c.session.Actor()})
	return lead, nil
}

// DeleteLead asks for confirmation, deletes the lead and reloads the whole
// directory so it reflects the backend rather than a local prune.
func (c *MutationCoordinator) DeleteLead(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(ctx, DeleteLeadPrompt) {
		return ErrNotConfirmed
	}

	err := c.backend.DeleteLead(ctx, id)
	c.recorder.ObserveMutation("lead_delete", err)
	if err != nil {
		apiErr := ClassifyError(err)
		c.logger.Warn("lead delete failed", zap.String("lead_id", id), zap.Error(apiErr))
		return apiErr
	}

	c.logger.Info("lead deleted", zap.String("lead_id", id))
	c.record(ctx, "lead.delete", "lead", id, nil)
	c.publishLead(ctx, LeadEvent{LeadID: id, Action: "deleted", ChangedBy: c.session.Actor()})

	// The delete stands even when the reload fails; the failure stays on
	// the directory and the next list request retries it.
	if _, err := c.leads.LoadAll(ctx); err != nil {
		c.logger.Warn("reload after delete failed", zap.String("lead_id", id), zap.Error(err))
	}
	return nil
}

// CreateAdmin validates locally, rejects usernames and emails already in the
// loaded admin list, then posts the new admin.
func (c *MutationCoordinator) CreateAdmin(ctx context.Context, input CreateAdminInput) (entity.Admin, error) {
	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if errs := ValidateCreateAdminInput(input); len(errs) > 0 {
		return entity.Admin{}, errs
	}
	if errs := duplicateAdminFields(c.admins.Snapshot(), input); len(errs) > 0 {
		return entity.Admin{}, errs
	}

	created, err := c.backend.CreateAdmin(ctx, input)
	c.recorder.ObserveMutation("admin_create", err)
	if err != nil {
		apiErr := ClassifyError(err)
		if apiErr.Kind == KindConflict {
			apiErr = attributeConflict(apiErr)
		}
		c.logger.Warn("admin create failed", zap.String("username", input.Username), zap.Error(apiErr))
		return entity.Admin{}, apiErr
	}

	admin := entity.Admin{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		CreatedAt: entity.NewTimestamp(c.now()),
	}
	if created != nil {
		admin = fillAdmin(*created, admin)
	}
	c.admins.Add(admin)

	c.logger.Info("admin created", zap.String("admin_id", admin.ID), zap.String("username", admin.Username))
	c.record(ctx, "admin.create", "admin", admin.ID, map[string]any{"username": admin.Username})
	if c.events != nil {
		event := AdminEvent{
			AdminID:   admin.ID,
			Username:  admin.Username,
			Email:     admin.Email,
			FirstName: admin.FirstName,
			LastName:  admin.LastName,
			CreatedBy: c.session.Actor(),
		}
		if err := c.events.PublishAdminCreated(ctx, event); err != nil {
			c.logger.Error("failed to publish admin event", zap.Error(err))
		}
	}
	return admin, nil
}

func (c *MutationCoordinator) UpdateMessage(ctx context.Context, id, text string) (entity.Message, error) {
	updated, err := c.backend.UpdateMessage(ctx, id, UpdateMessageRequest{Message: text})
	c.recorder.ObserveMutation("message_update", err)
	if err != nil {
		apiErr := ClassifyError(err)
		c.logger.Warn("message update failed", zap.String("message_id", id), zap.Error(apiErr))
		return entity.Message{}, apiErr
	}

	var msg entity.Message
	if updated == nil {
		msg, _ = c.messages.Find(id)
		msg.ID = id
		msg.Text = text
		msg.Metadata.UpdatedAt = entity.NewTimestamp(c.now())
	} else {
		msg = *updated
		if msg.ID == "" {
			msg.ID = id
		}
	}
	c.messages.ApplyPatch(msg)

	c.record(ctx, "message.update", "message", id, nil)
	if c.events != nil {
		if err := c.events.PublishMessageUpdated(ctx, MessageEvent{MessageID: id, ChangedBy: c.session.Actor()}); err != nil {
			c.logger.Error("failed to publish message event", zap.Error(err))
		}
	}
	return msg, nil
}

func (c *MutationCoordinator) record(ctx context.Context, action, resource, id string, details map[string]any) {
	if c.audit == nil {
		return
	}
	entry := AuditEntry{Actor: c.session.Actor(), Action: action, Resource: resource, TargetID: id, Details: details}
	if err := c.audit.Record(ctx, entry); err != nil {
		c.logger.Error("failed to write audit entry", zap.String("action", action), zap.Error(err))
	}
}

func (c *MutationCoordinator) publishLead(ctx context.Context, event LeadEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.PublishLeadEvent(ctx, event); err != nil {
		c.logger.Error("failed to publish lead event", zap.String("action", event.Action), zap.Error(err))
	}
}

func normalizeContactPatch(p ContactPatch) ContactPatch {
	trim := func(v *string, fn func(string) string) *string {
		if v == nil {
			return nil
		}
		out := fn(*v)
		return &out
	}
	p.FirstName = trim(p.FirstName, strings.TrimSpace)
	p.LastName = trim(p.LastName, strings.TrimSpace)
	p.Email = trim(p.Email, func(s string) string { return strings.ToLower(strings.TrimSpace(s)) })
	p.Phone = trim(p.Phone, strings.TrimSpace)
	p.Suburb = trim(p.Suburb, strings.TrimSpace)
	p.Timeframe = trim(p.Timeframe, strings.TrimSpace)
	if p.Selling != nil {
		v := entity.NormalizeTriState(string(*p.Selling))
		p.Selling = &v
	}
	if p.Buying != nil {
		v := entity.NormalizeTriState(string(*p.Buying))
		p.Buying = &v
	}
	return p
}

// applyContactPatch lays the set fields of p over the stored contact.
func applyContactPatch(current entity.Contact, p ContactPatch) entity.Contact {
	out := current
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&out.FirstName, p.FirstName)
	set(&out.LastName, p.LastName)
	set(&out.Email, p.Email)
	set(&out.Phone, p.Phone)
	set(&out.Suburb, p.Suburb)
	set(&out.Timeframe, p.Timeframe)
	if p.Selling != nil {
		out.Selling = entity.TriStateOf(p.Selling.Bool())
	}
	if p.Buying != nil {
		out.Buying = entity.TriStateOf(p.Buying.Bool())
	}
	return out
}

func contactBody(c entity.Contact, score *float64) ContactBody {
	return ContactBody{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Suburb:    c.Suburb,
		Timeframe: c.Timeframe,
		Selling:   c.Selling.Bool(),
		Buying:    c.Buying.Bool(),
		Score:     score,
	}
}

func statusNote(status, actor string) string {
	return fmt.Sprintf("Status changed to %s by %s", status, actor)
}

// mergeLead builds the record the backend would have returned: the sent
// contact over the current record, the new status when one was sent.
func mergeLead(current entity.Lead, id string, contact entity.Contact, score *float64, status string) entity.Lead {
	lead := current.Clone()
	lead.ID = id
	lead.Contact = contact
	if score != nil {
		v := *score
		lead.Score = &v
	}
	if status != "" {
		lead.Status = status
	}
	return lead
}

// overlayLead lays a server response over the locally merged record. Blocks
// the response leaves out keep their local values.
func overlayLead(local, updated entity.Lead) entity.Lead {
	out := local
	if updated.ID != "" {
		out.ID = updated.ID
	}
	if !updated.Contact.IsZero() {
		out.Contact = updated.Contact
	}
	if updated.Status != "" {
		out.Status = updated.Status
	}
	if updated.Score != nil {
		out.Score = updated.Score
	}
	if updated.CategoryLabel != "" {
		out.CategoryLabel = updated.CategoryLabel
	}
	if !updated.Metadata.IsZero() {
		out.Metadata = updated.Metadata
	}
	return out
}

func fillAdmin(created, sent entity.Admin) entity.Admin {
	if created.Username == "" {
		created.Username = sent.Username
	}
	if created.Email == "" {
		created.Email = sent.Email
	}
	if created.FirstName == "" {
		created.FirstName = sent.FirstName
	}
	if created.LastName == "" {
		created.LastName = sent.LastName
	}
	if !created.CreatedAt.IsSet() {
		created.CreatedAt = sent.CreatedAt
	}
	return created
}

func duplicateAdminFields(admins []entity.Admin, input CreateAdminInput) ValidationErrors {
	var errs ValidationErrors
	for _, a := range admins {
		if strings.EqualFold(strings.TrimSpace(a.Username), input.Username) {
			errs = append(errs, ValidationError{"username", MsgUsernameUsed})
			break
		}
	}
	for _, a := range admins {
		if input.Email != "" && strings.EqualFold(strings.TrimSpace(a.Email), input.Email) {
			errs = append(errs, ValidationError{"email", MsgEmailUsed})
			break
		}
	}
	return errs
}

// attributeConflict maps a duplicate rejection to the field in error. The
// error code is authoritative; the message is only sniffed when no code
// names a field.
func attributeConflict(apiErr *APIError) *APIError {
	out := *apiErr
	out.Fields = map[string]string{}

	switch strings.ToUpper(out.Code) {
	case "USERNAME_EXISTS":
		out.Fields["username"] = MsgUsernameUsed
	case "EMAIL_EXISTS":
		out.Fields["email"] = MsgEmailUsed
	default:
		msg := strings.ToLower(out.Message)
		if strings.Contains(msg, "username") {
			out.Fields["username"] = MsgUsernameUsed
		}
		if strings.Contains(msg, "email") {
			out.Fields["email"] = MsgEmailUsed
		}
	}

	if len(out.Fields) == 0 {
		out.Fields = nil
		out.Message = "An admin with these details already exists."
	}
	return &out
}

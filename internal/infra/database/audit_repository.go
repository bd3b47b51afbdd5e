package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

const auditSchema = `
	CREATE TABLE IF NOT EXISTS lead_audit (
		id          UUID PRIMARY KEY,
		actor       TEXT NOT NULL,
		action      TEXT NOT NULL,
		resource    TEXT NOT NULL,
		target_id   TEXT NOT NULL,
		details     JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL
	)
`

var _ usecase.AuditRecorder = (*AuditRepository)(nil)

// AuditRepository appends staff mutations to the lead_audit table.
type AuditRepository struct {
	DB     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditRepository(db *sql.DB, logger *zap.Logger) *AuditRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditRepository{DB: db, logger: logger.With(zap.String("component", "audit")), now: time.Now}
}

func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("create lead_audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) Record(ctx context.Context, entry usecase.AuditEntry) error {
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}

	query := `
		INSERT INTO lead_audit (id, actor, action, resource, target_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.DB.ExecContext(ctx, query,
		uuid.NewString(),
		entry.Actor,
		entry.Action,
		entry.Resource,
		entry.TargetID,
		payload,
		r.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	r.logger.Debug("audit entry recorded",
		zap.String("action", entry.Action),
		zap.String("target_id", entry.TargetID),
	)
	return nil
}

// AuditRecord is a stored audit row.
type AuditRecord struct {
	ID        string         `json:"id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	TargetID  string         `json:"target_id"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}

// ListByTarget returns the trail for one record, newest first.
func (r *AuditRepository) ListByTarget(ctx context.Context, resource, targetID string, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, actor, action, resource, target_id, details, created_at
		FROM lead_audit
		WHERE resource = $1 AND target_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, resource, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit trail: %w", err)
	}
	defer rows.Close()

	records := []AuditRecord{}
	for rows.Next() {
		var rec AuditRecord
		var details []byte
		if err := rows.Scan(&rec.ID, &rec.Actor, &rec.Action, &rec.Resource, &rec.TargetID, &details, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &rec.Details); err != nil {
				r.logger.Warn("unreadable audit details", zap.String("id", rec.ID), zap.Error(err))
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return records, nil
}

package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stone-realestate/leadops/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupMockAuditDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *AuditRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewAuditRepository(db, zap.NewNop())
	repo.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return db, mock, repo
}

func TestEnsureSchema(t *testing.T) {
	_, mock, repo := setupMockAuditDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS lead_audit`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_Success(t *testing.T) {
	_, mock, repo := setupMockAuditDB(t)

	mock.ExpectExec(`INSERT INTO lead_audit`).
		WithArgs(sqlmock.AnyArg(), "sam", "lead.update", "lead", "l-1", []byte(`{"status":"contacted"}`), time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Record(context.Background(), usecase.AuditEntry{
		Actor:    "sam",
		Action:   "lead.update",
		Resource: "lead",
		TargetID: "l-1",
		Details:  map[string]any{"status": "contacted"},
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_NilDetailsStoredAsEmptyObject(t *testing.T) {
	_, mock, repo := setupMockAuditDB(t)

	mock.ExpectExec(`INSERT INTO lead_audit`).
		WithArgs(sqlmock.AnyArg(), "sam", "lead.delete", "lead", "l-2", []byte(`{}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Record(context.Background(), usecase.AuditEntry{Actor: "sam", Action: "lead.delete", Resource: "lead", TargetID: "l-2"})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_DatabaseError(t *testing.T) {
	_, mock, repo := setupMockAuditDB(t)

	mock.ExpectExec(`INSERT INTO lead_audit`).WillReturnError(errors.New("connection reset"))

	err := repo.Record(context.Background(), usecase.AuditEntry{Actor: "sam"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert audit entry")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByTarget(t *testing.T) {
	_, mock, repo := setupMockAuditDB(t)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "actor", "action", "resource", "target_id", "details", "created_at"}).
		AddRow("a-2", "sam", "lead.update", "lead", "l-1", []byte(`{"status":"closed"}`), at.Add(time.Minute)).
		AddRow("a-1", "jo", "lead.update", "lead", "l-1", []byte(`{}`), at)

	mock.ExpectQuery(`SELECT id, actor, action`).
		WithArgs("lead", "l-1", 50).
		WillReturnRows(rows)

	records, err := repo.ListByTarget(context.Background(), "lead", "l-1", 0)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a-2", records[0].ID)
	assert.Equal(t, "closed", records[0].Details["status"])
	assert.Equal(t, "jo", records[1].Actor)
	require.NoError(t, mock.ExpectationsWereMet())
}

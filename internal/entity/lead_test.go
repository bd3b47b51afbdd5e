package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeadUnmarshalNormalisesPayload(t *testing.T) {
	payload := `{
		"lead_id": "lead-42",
		"id": "ignored",
		"contact": {
			"first_name": " Ada ",
			"last_name": "Lovelace",
			"email": "ada@example.com",
			"phone": "0400 000 000",
			"suburb": "Fitzroy",
			"timeframe": "3-6 months",
			"interested": "Yes"
		},
		"status": {"current": "contacted", "notes": "called", "changed_by": "sam"},
		"metadata": {
			"created_at": "2024-03-01T10:00:00Z",
			"custom_fields": {"buying_interest": "no", "score": "55"}
		}
	}`

	var lead Lead
	require.NoError(t, json.Unmarshal([]byte(payload), &lead))

	assert.Equal(t, "lead-42", lead.ID)
	assert.Equal(t, "Ada", lead.Contact.FirstName)
	assert.Equal(t, "Ada Lovelace", lead.Contact.FullName())
	assert.Equal(t, TriYes, lead.Contact.Selling)
	assert.Equal(t, TriNo, lead.Contact.Buying)
	assert.Equal(t, "contacted", lead.Status)
	assert.Equal(t, CategoryWarm, lead.Category())
	assert.False(t, lead.IsDeleted())
	assert.True(t, lead.Metadata.CreatedAt.Valid())
	assert.Equal(t, "55", lead.Metadata.CustomFields["score"])
}

func TestLeadSoftDeleteIsAnyNonNullValue(t *testing.T) {
	var deleted, unparseable, active Lead
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","metadata":{"deleted_at":"2024-01-01T00:00:00Z"}}`), &deleted))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"b","metadata":{"deleted_at":"yesterday"}}`), &unparseable))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c","metadata":{"deleted_at":null}}`), &active))

	assert.True(t, deleted.IsDeleted())
	assert.True(t, unparseable.IsDeleted())
	assert.False(t, active.IsDeleted())
}

func TestLeadRoundTripKeepsDerivedValues(t *testing.T) {
	score := 80.0
	in := Lead{
		ID:      "l-1",
		Contact: Contact{FirstName: "Sam", Selling: TriYes, Buying: TriUnknown},
		Score:   &score,
		Status:  "new",
		Metadata: Metadata{
			UpdatedAt: NewTimestamp(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)),
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Lead
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, CategoryHot, out.Category())
	assert.Equal(t, TriYes, out.Contact.Selling)
	assert.Equal(t, TriUnknown, out.Contact.Buying)
	assert.Equal(t, in.Metadata.UpdatedAt.UnixMilli(), out.Metadata.UpdatedAt.UnixMilli())
}

func TestLeadTouchOnlyStampsMissingUpdatedAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	var lead Lead
	lead.Touch(now)
	assert.Equal(t, now.UnixMilli(), lead.Metadata.UpdatedAt.UnixMilli())

	earlier := NewTimestamp(now.Add(-time.Hour))
	lead.Metadata.UpdatedAt = earlier
	lead.Touch(now)
	assert.Equal(t, earlier.UnixMilli(), lead.Metadata.UpdatedAt.UnixMilli())
}

func TestAdminAndMessageShapes(t *testing.T) {
	var admin Admin
	require.NoError(t, json.Unmarshal([]byte(`{"admin_id":"a-1","username":"sam","first_name":"Sam","metadata":{"created_at":1709287200000}}`), &admin))
	assert.Equal(t, "a-1", admin.ID)
	assert.Equal(t, "Sam", admin.FullName())
	assert.True(t, admin.CreatedAt.Valid())

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"message_id":"m-1","content":"call me back","body":"ignored"}`), &msg))
	assert.Equal(t, "m-1", msg.ID)
	assert.Equal(t, "call me back", msg.Text)

	var ident Identity
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u-1","first_name":"Jo","last_name":"Bloggs","metadata":{"role":"admin"}}`), &ident))
	assert.Equal(t, "u-1", ident.ID)
	assert.Equal(t, "Jo Bloggs", ident.DisplayName())
	assert.Equal(t, "admin", ident.Role)
	assert.Equal(t, "u-1", ident.Actor())
}

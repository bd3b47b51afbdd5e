package entity

import (
	"encoding/json"
	"maps"
	"strings"
	"time"
)

type Contact struct {
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Suburb    string   `json:"suburb"`
	Timeframe string   `json:"timeframe"`
	Selling   TriState `json:"selling_interest"`
	Buying    TriState `json:"buying_interest"`
}

func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// IsZero reports a contact block that carries no field at all, which is how
// an omitted block decodes.
func (c Contact) IsZero() bool {
	return c.FirstName == "" && c.LastName == "" && c.Email == "" && c.Phone == "" &&
		c.Suburb == "" && c.Timeframe == "" &&
		(c.Selling == "" || c.Selling == TriUnknown) &&
		(c.Buying == "" || c.Buying == TriUnknown)
}

type Metadata struct {
	CreatedAt    Timestamp      `json:"created_at"`
	UpdatedAt    Timestamp      `json:"updated_at"`
	DeletedAt    Timestamp      `json:"deleted_at"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

func (m Metadata) IsZero() bool {
	return !m.CreatedAt.IsSet() && !m.UpdatedAt.IsSet() && !m.DeletedAt.IsSet() && len(m.CustomFields) == 0
}

// Lead is the normalised lead record. Every shape variation of the backend
// payload is resolved once, in UnmarshalJSON.
type Lead struct {
	ID            string   `json:"id"`
	Contact       Contact  `json:"contact"`
	Score         *float64 `json:"score,omitempty"`
	Status        string   `json:"status"`
	CategoryLabel string   `json:"category,omitempty"`
	Metadata      Metadata `json:"metadata"`
}

func (l *Lead) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = NormalizeLead(raw)
	return nil
}

// NormalizeLead builds a Lead from a decoded backend payload.
func NormalizeLead(raw map[string]any) Lead {
	contact := nested(raw, "contact")
	meta := nested(raw, "metadata")
	custom := nested(raw, "metadata", "custom_fields")

	lead := Lead{
		ID:     firstString(raw, "lead_id", "id", "_id"),
		Status: ResolveStatus(raw["status"]),
		Contact: Contact{
			FirstName: firstString(contact, "first_name"),
			LastName:  firstString(contact, "last_name"),
			Email:     firstString(contact, "email"),
			Phone:     firstString(contact, "phone"),
			Suburb:    firstString(contact, "suburb"),
			Timeframe: firstString(contact, "timeframe"),
			Selling:   NormalizeTriState(firstPresent(contact, "selling_interest", "interested")),
			Buying:    NormalizeTriState(buyingInterest(contact, custom)),
		},
		CategoryLabel: firstString(raw, "category", "lead_category"),
		Metadata: Metadata{
			CreatedAt: TimestampOf(meta["created_at"]),
			UpdatedAt: TimestampOf(meta["updated_at"]),
			DeletedAt: TimestampOf(meta["deleted_at"]),
		},
	}
	if lead.CategoryLabel == "" {
		lead.CategoryLabel = firstString(meta, "category")
	}
	if len(custom) > 0 {
		lead.Metadata.CustomFields = maps.Clone(custom)
	}
	if score, ok := ResolveScore(raw); ok {
		lead.Score = &score
	}
	return lead
}

func buyingInterest(contact, custom map[string]any) any {
	if v := firstPresent(contact, "buying_interest"); v != nil {
		return v
	}
	return firstPresent(custom, "buying_interest")
}

// IsDeleted reports a soft delete: any non-null deleted_at counts.
func (l Lead) IsDeleted() bool {
	return l.Metadata.DeletedAt.IsSet()
}

func (l Lead) Category() Category {
	return ResolveCategory(l.Score, l.CategoryLabel)
}

func (l Lead) ScoreOrZero() float64 {
	if l.Score == nil {
		return 0
	}
	return *l.Score
}

// Touch stamps updated_at when the server did not send one.
func (l *Lead) Touch(now time.Time) {
	if !l.Metadata.UpdatedAt.IsSet() {
		l.Metadata.UpdatedAt = NewTimestamp(now)
	}
}

// Clone returns a copy that shares no mutable state with l.
func (l Lead) Clone() Lead {
	out := l
	if l.Score != nil {
		score := *l.Score
		out.Score = &score
	}
	if l.Metadata.CustomFields != nil {
		out.Metadata.CustomFields = maps.Clone(l.Metadata.CustomFields)
	}
	return out
}

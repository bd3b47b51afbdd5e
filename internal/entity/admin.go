package entity

import (
	"encoding/json"
	"strings"
)

type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt Timestamp `json:"created_at"`
}

func (a *Admin) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	created := raw["created_at"]
	if v, ok := lookup(raw, "metadata", "created_at"); ok {
		created = v
	}
	*a = Admin{
		ID:        firstString(raw, "id", "admin_id", "_id"),
		Username:  firstString(raw, "username"),
		FirstName: firstString(raw, "first_name"),
		LastName:  firstString(raw, "last_name"),
		Email:     firstString(raw, "email"),
		CreatedAt: TimestampOf(created),
	}
	return nil
}

func (a Admin) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// Identity is the signed-in staff user as reported by the auth endpoints.
type Identity struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt Timestamp `json:"created_at"`
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	meta := nested(raw, "metadata")
	created := raw["created_at"]
	if v, ok := meta["created_at"]; ok && v != nil {
		created = v
	}
	role := firstString(raw, "role")
	if role == "" {
		role = firstString(meta, "role")
	}
	*i = Identity{
		ID:        firstString(raw, "id", "user_id"),
		Username:  firstString(raw, "username"),
		Email:     firstString(raw, "email"),
		Name:      firstString(raw, "name"),
		FirstName: firstString(raw, "first_name"),
		LastName:  firstString(raw, "last_name"),
		Role:      role,
		CreatedAt: TimestampOf(created),
	}
	return nil
}

// DisplayName prefers the explicit name, then first + last.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return strings.TrimSpace(i.FirstName + " " + i.LastName)
}

// Actor is the value recorded as changed_by on status changes.
func (i Identity) Actor() string {
	switch {
	case i.Username != "":
		return i.Username
	case i.Email != "":
		return i.Email
	default:
		return i.ID
	}
}

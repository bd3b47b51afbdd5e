package usecase

import (
	"strconv"

	"github.com/stone-realestate/leadops/internal/entity"
)

const placeholder = "-"

// LeadRow is one rendered line of the lead table.
type LeadRow struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Suburb    string `json:"suburb"`
	Timeframe string `json:"timeframe"`
	Category  string `json:"category"`
	Selling   string `json:"selling"`
	Buying    string `json:"buying"`
	Score     string `json:"score"`
	Status    string `json:"status"`
	Created   string `json:"created"`
	Updated   string `json:"updated"`
}

type AdminRow struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Created  string `json:"created"`
}

type ProfileField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LeadRows renders a page of leads. Indexes continue across pages.
func LeadRows(page Page) []LeadRow {
	offset := page.Page * page.PageSize
	rows := make([]LeadRow, len(page.Leads))
	for i, l := range page.Leads {
		score := placeholder
		if l.Score != nil {
			score = strconv.FormatFloat(*l.Score, 'f', -1, 64)
		}
		rows[i] = LeadRow{
			Index:     offset + i + 1,
			ID:        l.ID,
			Name:      l.Contact.FullName(),
			Email:     l.Contact.Email,
			Phone:     l.Contact.Phone,
			Suburb:    l.Contact.Suburb,
			Timeframe: l.Contact.Timeframe,
			Category:  string(l.Category()),
			Selling:   orPlaceholder(string(l.Contact.Selling)),
			Buying:    orPlaceholder(string(l.Contact.Buying)),
			Score:     score,
			Status:    orPlaceholder(l.Status),
			Created:   orPlaceholder(l.Metadata.CreatedAt.String()),
			Updated:   orPlaceholder(l.Metadata.UpdatedAt.String()),
		}
	}
	return rows
}

func AdminRows(admins []entity.Admin) []AdminRow {
	rows := make([]AdminRow, len(admins))
	for i, a := range admins {
		rows[i] = AdminRow{
			Index:    i + 1,
			ID:       a.ID,
			Username: orPlaceholder(a.Username),
			Name:     a.FullName(),
			Email:    orPlaceholder(a.Email),
			Created:  orPlaceholder(a.CreatedAt.String()),
		}
	}
	return rows
}

// ProfileFields lists the signed-in identity in display order.
func ProfileFields(id entity.Identity) []ProfileField {
	return []ProfileField{
		{"ID", orPlaceholder(id.ID)},
		{"Email", orPlaceholder(id.Email)},
		{"Username", orPlaceholder(id.Username)},
		{"Name", orPlaceholder(id.DisplayName())},
		{"Role", orPlaceholder(id.Role)},
		{"Created", orPlaceholder(id.CreatedAt.String())},
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

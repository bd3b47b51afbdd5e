package usecase

import (
	"cmp"
	"slices"
	"strings"

	"github.com/stone-realestate/leadops/internal/entity"
)

const DefaultViewPageSize = 5

type SortKey string

const (
	SortNone      SortKey = ""
	SortFirstName SortKey = "first_name"
	SortLastName  SortKey = "last_name"
	SortName      SortKey = "name"
	SortEmail     SortKey = "email"
	SortPhone     SortKey = "phone"
	SortSuburb    SortKey = "suburb"
	SortTimeframe SortKey = "timeframe"
	SortScore     SortKey = "score"
	SortCategory  SortKey = "category"
	SortStatus    SortKey = "status"
	SortSelling   SortKey = "selling"
	SortBuying    SortKey = "buying"
	SortCreated   SortKey = "created"
	SortUpdated   SortKey = "updated"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// ViewState is the query, sort and page the lead table is showing.
// Changing the query or the sort sends the table back to the first page;
// changes to the collection do not.
type ViewState struct {
	Query   string  `json:"query"`
	SortKey SortKey `json:"sort_key"`
	SortDir SortDir `json:"sort_dir"`
	Page    int     `json:"page"`
}

func (v *ViewState) SetQuery(q string) {
	if q == v.Query {
		return
	}
	v.Query = q
	v.Page = 0
}

// ToggleSort flips the direction of the active key, or switches to key ascending.
func (v *ViewState) ToggleSort(key SortKey) {
	if key == v.SortKey && key != SortNone {
		if v.SortDir == SortDesc {
			v.SortDir = SortAsc
		} else {
			v.SortDir = SortDesc
		}
	} else {
		v.SortKey = key
		v.SortDir = SortAsc
	}
	v.Page = 0
}

// SetSort applies an explicit key and direction.
func (v *ViewState) SetSort(key SortKey, dir SortDir) {
	if dir != SortDesc {
		dir = SortAsc
	}
	if key == v.SortKey && dir == v.direction() {
		return
	}
	v.SortKey = key
	v.SortDir = dir
	v.Page = 0
}

func (v *ViewState) SetPage(page int) {
	v.Page = max(page, 0)
}

func (v ViewState) direction() SortDir {
	if v.SortDir == SortDesc {
		return SortDesc
	}
	return SortAsc
}

func ValidSortKey(key SortKey) bool {
	_, ok := sortValues[key]
	return ok || key == SortNone
}

type Page struct {
	Leads     []entity.Lead `json:"leads"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
	PageCount int           `json:"page_count"`
	Total     int           `json:"total"`
}

// Project filters, sorts and slices leads. It never mutates its input.
func Project(leads []entity.Lead, state ViewState, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultViewPageSize
	}
	all := ProjectAll(leads, state)

	page := Page{
		Page:      max(state.Page, 0),
		PageSize:  pageSize,
		Total:     len(all),
		PageCount: (len(all) + pageSize - 1) / pageSize,
	}
	start := page.Page * pageSize
	if start >= len(all) {
		page.Leads = []entity.Lead{}
		return page
	}
	end := min(start+pageSize, len(all))
	page.Leads = all[start:end]
	return page
}

// ProjectAll is the filtered and sorted collection without pagination.
func ProjectAll(leads []entity.Lead, state ViewState) []entity.Lead {
	out := Filter(leads, state.Query)
	SortLeads(out, state.SortKey, state.direction())
	return out
}

// Filter keeps leads whose searchable text contains query, ignoring case.
func Filter(leads []entity.Lead, query string) []entity.Lead {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]entity.Lead, 0, len(leads))
	for _, l := range leads {
		if q == "" || strings.Contains(searchText(l), q) {
			out = append(out, l)
		}
	}
	return out
}

func searchText(l entity.Lead) string {
	c := l.Contact
	return strings.ToLower(strings.Join([]string{
		c.FirstName, c.LastName, c.Email, c.Phone, c.Suburb, c.Timeframe,
		string(l.Category()), l.Status,
	}, " "))
}

type sortValue func(entity.Lead) any

var sortValues = map[SortKey]sortValue{
	SortFirstName: func(l entity.Lead) any { return fold(l.Contact.FirstName) },
	SortLastName:  func(l entity.Lead) any { return fold(l.Contact.LastName) },
	SortName:      func(l entity.Lead) any { return fold(l.Contact.FullName()) },
	SortEmail:     func(l entity.Lead) any { return fold(l.Contact.Email) },
	SortPhone:     func(l entity.Lead) any { return fold(l.Contact.Phone) },
	SortSuburb:    func(l entity.Lead) any { return fold(l.Contact.Suburb) },
	SortTimeframe: func(l entity.Lead) any { return fold(l.Contact.Timeframe) },
	SortScore:     func(l entity.Lead) any { return l.ScoreOrZero() },
	SortCategory:  func(l entity.Lead) any { return string(l.Category()) },
	SortStatus:    func(l entity.Lead) any { return fold(l.Status) },
	SortSelling:   func(l entity.Lead) any { return string(l.Contact.Selling) },
	SortBuying:    func(l entity.Lead) any { return string(l.Contact.Buying) },
	SortCreated:   func(l entity.Lead) any { return l.Metadata.CreatedAt.UnixMilli() },
	SortUpdated:   func(l entity.Lead) any { return l.Metadata.UpdatedAt.UnixMilli() },
}

// SortLeads sorts in place and is stable. Unknown keys leave the order alone.
func SortLeads(leads []entity.Lead, key SortKey, dir SortDir) {
	value, ok := sortValues[key]
	if !ok {
		return
	}
	sign := 1
	if dir == SortDesc {
		sign = -1
	}
	slices.SortStableFunc(leads, func(a, b entity.Lead) int {
		return sign * compareValues(value(a), value(b))
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		return cmp.Compare(av, b.(string))
	case float64:
		return cmp.Compare(av, b.(float64))
	case int64:
		return cmp.Compare(av, b.(int64))
	}
	return 0
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

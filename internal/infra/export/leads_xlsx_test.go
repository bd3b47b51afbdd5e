package export

import (
	"bytes"
	"testing"

	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestLeadsWorkbook(t *testing.T) {
	score := 80.0
	leads := []entity.Lead{
		{
			Contact: entity.Contact{
				FirstName: "Ada",
				LastName:  "Lovelace",
				Email:     "ada@example.com",
				Phone:     "0400",
				Suburb:    "Carlton",
				Timeframe: "3m",
				Selling:   entity.TriYes,
				Buying:    entity.TriNo,
			},
			Score:  &score,
			Status: "contacted",
		},
		{
			Contact: entity.Contact{FirstName: "Ben", Selling: entity.TriUnknown, Buying: entity.TriUnknown},
		},
	}

	data, err := Leads(leads)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, LeadHeader, rows[0])
	assert.Equal(t, []string{"Ada", "Lovelace", "80", "HOT", "contacted", "yes", "no", "Carlton", "3m", "ada@example.com", "0400", "-"}, rows[1])
	assert.Equal(t, "Ben", rows[2][0])
	assert.Equal(t, "-", rows[2][2])
	assert.Equal(t, "-", rows[2][3])
	assert.Equal(t, "-", rows[2][4])
}

func TestLeadsWorkbookEmpty(t *testing.T) {
	data, err := Leads(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

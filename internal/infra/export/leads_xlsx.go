package export

import (
	"bytes"
	"fmt"

	"github.com/stone-realestate/leadops/internal/entity"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Leads"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// LeadHeader is the fixed column order of the lead export.
var LeadHeader = []string{
	"First Name",
	"Last Name",
	"Score",
	"Category",
	"Status",
	"Selling",
	"Buying",
	"Suburb",
	"Timeframe",
	"Email",
	"Phone",
	"Updated",
}

var columnWidths = []float64{15, 15, 8, 10, 14, 9, 9, 18, 12, 28, 16, 22}

// LeadRow renders one lead in LeadHeader order.
func LeadRow(l entity.Lead) []any {
	var score any = "-"
	if l.Score != nil {
		score = *l.Score
	}
	c := l.Contact
	return []any{
		c.FirstName,
		c.LastName,
		score,
		string(l.Category()),
		orDash(l.Status),
		orDash(string(c.Selling)),
		orDash(string(c.Buying)),
		c.Suburb,
		c.Timeframe,
		c.Email,
		c.Phone,
		orDash(l.Metadata.UpdatedAt.String()),
	}
}

// Leads writes leads, already filtered and sorted by the caller, to an xlsx workbook.
func Leads(leads []entity.Lead) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	header := make([]any, len(LeadHeader))
	for i, h := range LeadHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(LeadHeader), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, lead := range leads {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		row := LeadRow(lead)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Package export renders funnel submissions as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gentaArnezzi/onvlo/internal/model"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	sheetName   = "Submissions"
)

var fixedHeader = []string{"ID", "Created At", "Client ID", "Status"}

// column is one response column: a schema field, or a key that only old
// submissions still carry.
type column struct {
	key   string
	label string
}

func columns(f *model.Funnel, subs []*model.Submission) []column {
	cols := make([]column, 0, len(f.Fields))
	known := map[string]bool{}
	for _, fd := range f.Fields {
		cols = append(cols, column{key: fd.ID, label: fd.Label})
		known[fd.ID] = true
	}

	var extra []string
	for _, s := range subs {
		for k := range s.Responses {
			if !known[k] {
				known[k] = true
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)
	for _, k := range extra {
		cols = append(cols, column{key: k, label: k})
	}
	return cols
}

// Submissions builds an XLSX workbook with one row per submission.
func Submissions(f *model.Funnel, subs []*model.Submission) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	index, err := x.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	x.SetActiveSheet(index)
	if err := x.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := x.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	cols := columns(f, subs)
	header := make([]any, 0, len(fixedHeader)+len(cols))
	for _, h := range fixedHeader {
		header = append(header, h)
	}
	for _, c := range cols {
		header = append(header, c.label)
	}
	if err := x.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := x.SetCellStyle(sheetName, "A1", last, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := x.SetColWidth(sheetName, "A", lastCol, 20); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, s := range subs {
		row := []any{s.ID, s.CreatedAt.UTC().Format(time.RFC3339), s.ClientID, string(s.Status)}
		for _, c := range cols {
			row = append(row, cellValue(s.Responses[c.key]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := x.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if _, err := x.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case string, float64, int, int64:
		return t
	default:
		return fmt.Sprint(t)
	}
}

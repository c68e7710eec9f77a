package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gentaArnezzi/onvlo/internal/model"
)

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	return rows
}

func TestSubmissions(t *testing.T) {
	funnel := &model.Funnel{
		Fields: []model.FieldDescriptor{
			{ID: "name", Kind: model.KindText, Label: "Full name"},
			{ID: "agree", Kind: model.KindCheckbox, Label: "Agree"},
		},
	}
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	subs := []*model.Submission{
		{
			ID:        "s-1",
			ClientID:  "c-1",
			Status:    model.SubmissionCompleted,
			CreatedAt: created,
			Responses: map[string]any{"name": "Jane", "agree": true, "legacy": "old value"},
		},
		{
			ID:        "s-2",
			Status:    model.SubmissionPending,
			CreatedAt: created,
			Responses: map[string]any{"agree": false},
		},
	}

	data, err := Submissions(funnel, subs)
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Created At", "Client ID", "Status", "Full name", "Agree", "legacy"}, rows[0])
	assert.Equal(t, []string{"s-1", "2024-05-01T09:30:00Z", "c-1", "completed", "Jane", "Yes", "old value"}, rows[1])
	assert.Equal(t, []string{"s-2", "2024-05-01T09:30:00Z", "", "pending", "", "No"}, rows[2])
}

func TestSubmissions_Empty(t *testing.T) {
	data, err := Submissions(&model.Funnel{}, nil)
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, fixedHeader, rows[0])
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{in: nil, want: ""},
		{in: true, want: "Yes"},
		{in: false, want: "No"},
		{in: "x", want: "x"},
		{in: 3.5, want: 3.5},
		{in: []any{"a", "b"}, want: "[a b]"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, cellValue(tc.in))
	}
}

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cnosuke/redirect-checker/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		ref, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, ref, &row))
	}

	path := filepath.Join(t.TempDir(), "redirections.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_Workbook_FirstSheet(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"Old URL", "Expected New URL"},
		{"https://x.com/old-page", "new-page"},
		{"https://x.com/other", "other-new"},
	})

	rows, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"https://x.com/old-page", "new-page"}, rows[1])
}

func TestLoad_Workbook_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Redirects", [][]interface{}{
		{"old", "new"},
		{"https://x.com/a", "b"},
	})

	rows, err := Load(path, Options{Sheet: "Redirects"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "https://x.com/a", rows[1][0])

	_, err = Load(path, Options{Sheet: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `failed to read sheet "Missing"`)
}

func TestLoad_CSV_Ragged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redirections.csv")
	content := "old,new\nhttps://x.com/a,a-new\nhttps://x.com/b\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"https://x.com/b"}, rows[2])
}

func TestLoad_BlankRowsMatchAcrossFormats(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "redirections.csv")
	content := "old,new\nhttps://x.com/a,a-new\n\n\r\nhttps://x.com/b,\"b\nnew\"\n\nhttps://x.com/c,c-new\n\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0o644))

	xlsxPath := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"old", "new"},
		{"https://x.com/a", "a-new"},
		{},
		{},
		{"https://x.com/b", "b\nnew"},
		{},
		{"https://x.com/c", "c-new"},
	})

	csvRows, err := Load(csvPath, Options{})
	require.NoError(t, err)
	xlsxRows, err := Load(xlsxPath, Options{})
	require.NoError(t, err)

	csvSpecs := Specs(csvRows)
	xlsxSpecs := Specs(xlsxRows)
	require.Len(t, csvSpecs, 6)
	assert.Len(t, xlsxSpecs, len(csvSpecs))

	// Blank middle lines become rows with missing fields; trailing blank lines are dropped
	assert.Equal(t, types.RedirectionSpec{}, csvSpecs[1])
	assert.Equal(t, types.RedirectionSpec{}, csvSpecs[2])
	assert.Equal(t, types.RedirectionSpec{OldURL: "https://x.com/b", ExpectedNewURLContains: "b\nnew"}, csvSpecs[3])
	assert.Equal(t, types.RedirectionSpec{}, csvSpecs[4])
	assert.Equal(t, "https://x.com/c", csvSpecs[5].OldURL)
	assert.Equal(t, csvSpecs, xlsxSpecs)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "data.json"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dataset format")

	_, err = Load(filepath.Join(t.TempDir(), "missing.xlsx"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}

func TestSpecs(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected []types.RedirectionSpec
	}{
		{
			name:     "no rows",
			rows:     nil,
			expected: []types.RedirectionSpec{},
		},
		{
			name:     "header only",
			rows:     [][]string{{"old", "new"}},
			expected: []types.RedirectionSpec{},
		},
		{
			name: "header discarded and order kept",
			rows: [][]string{
				{"old", "new"},
				{"https://x.com/1", "one"},
				{"https://x.com/2", "two"},
			},
			expected: []types.RedirectionSpec{
				{OldURL: "https://x.com/1", ExpectedNewURLContains: "one"},
				{OldURL: "https://x.com/2", ExpectedNewURLContains: "two"},
			},
		},
		{
			name: "missing and blank cells become empty",
			rows: [][]string{
				{"old", "new"},
				{"https://x.com/1"},
				{},
				{"  ", "two"},
				{" https://x.com/4 ", " four ", "extra"},
			},
			expected: []types.RedirectionSpec{
				{OldURL: "https://x.com/1", ExpectedNewURLContains: ""},
				{OldURL: "", ExpectedNewURLContains: ""},
				{OldURL: "", ExpectedNewURLContains: "two"},
				{OldURL: "https://x.com/4", ExpectedNewURLContains: "four"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Specs(tt.rows))
		})
	}
}

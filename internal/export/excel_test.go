package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

func readSheet(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	return rows
}

func TestFilename(t *testing.T) {
	now := time.UnixMilli(1714557600123)
	assert.Equal(t, "export_1714557600123.xlsx", Filename(now))
}

func TestHeader(t *testing.T) {
	rows := []domain.Row{
		{"month": "Jan", "revenue": 100, "zeta": 1},
		{"month": "Feb", "alpha": true},
	}
	assert.Equal(t, []string{"month", "revenue", "alpha", "zeta"}, Header([]string{"month", "revenue"}, rows))
}

func TestTabular(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	rows := []domain.Row{
		{"month": "Jan", "revenue": float64(100)},
		{"month": "Feb", "revenue": nil},
	}

	require.NoError(t, Tabular([]string{"month", "revenue"}, rows, path, Options{Strict: true}))

	got := readSheet(t, path)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"month", "revenue"}, got[0])
	assert.Equal(t, []string{"Jan", "100"}, got[1])
	assert.Equal(t, []string{"Feb"}, got[2])
}

func TestTabular_Strict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	rows := []domain.Row{
		{"month": "Jan"},
		{"month": "Feb", "extra": 1},
	}

	err := Tabular([]string{"month"}, rows, path, Options{Strict: true})
	require.Error(t, err)

	var alignErr *AlignmentError
	require.True(t, errors.As(err, &alignErr))
	assert.Equal(t, 1, alignErr.Row)
	assert.Equal(t, []string{"extra"}, alignErr.Keys)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTabular_Lenient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	rows := []domain.Row{
		{"month": "Feb", "extra": "x"},
	}

	require.NoError(t, Tabular([]string{"month"}, rows, path, Options{}))

	got := readSheet(t, path)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"month", "extra"}, got[0])
	assert.Equal(t, []string{"Feb", "x"}, got[1])
}

func TestMessage(t *testing.T) {
	dir := t.TempDir()
	now := time.UnixMilli(42)

	_, err := Message(domain.Message{Role: domain.RoleAssistant, Text: "no table"}, dir, now, Options{})
	assert.Error(t, err)

	msg := domain.Message{
		Role: domain.RoleAssistant,
		Result: &domain.ResultPayload{
			Table: &domain.Table{
				Columns: []string{"n"},
				Rows:    []domain.Row{{"n": float64(1)}},
			},
		},
	}
	path, err := Message(msg, dir, now, Options{Strict: true})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "export_42.xlsx"), path)
	assert.Len(t, readSheet(t, path), 2)
}

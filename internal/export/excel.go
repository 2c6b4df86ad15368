package export

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

const sheetName = "Data"

// Options controls how a table is written
type Options struct {
	// Strict rejects rows carrying keys that are not declared columns
	Strict bool
}

// AlignmentError reports a row whose keys do not match the declared columns
type AlignmentError struct {
	Row  int
	Keys []string
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("row %d has undeclared column(s): %s", e.Row, strings.Join(e.Keys, ", "))
}

// Filename returns the timestamped artifact name for an export made at now
func Filename(now time.Time) string {
	return fmt.Sprintf("export_%d.xlsx", now.UnixMilli())
}

// Header returns declared columns in order followed by any extra row keys, sorted
func Header(columns []string, rows []domain.Row) []string {
	header := slices.Clone(columns)
	declared := make(map[string]bool, len(columns))
	for _, c := range columns {
		declared[c] = true
	}

	var extra []string
	for _, row := range rows {
		for k := range row {
			if !declared[k] {
				declared[k] = true
				extra = append(extra, k)
			}
		}
	}
	slices.Sort(extra)

	return append(header, extra...)
}

// Validate checks that every row key is a declared column
func Validate(columns []string, rows []domain.Row) error {
	declared := make(map[string]bool, len(columns))
	for _, c := range columns {
		declared[c] = true
	}

	for i, row := range rows {
		var undeclared []string
		for k := range row {
			if !declared[k] {
				undeclared = append(undeclared, k)
			}
		}
		if len(undeclared) > 0 {
			slices.Sort(undeclared)
			return &AlignmentError{Row: i, Keys: undeclared}
		}
	}
	return nil
}

// Tabular writes columns and rows to a one-sheet spreadsheet at path
func Tabular(columns []string, rows []domain.Row, path string, opts Options) error {
	if opts.Strict {
		if err := Validate(columns, rows); err != nil {
			return fmt.Errorf("failed to validate rows: %w", err)
		}
	}

	header := Header(columns, rows)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &headerCells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		cells := make([]any, len(header))
		for j, h := range header {
			cells[j] = cellValue(row[h])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	log.Info().Str("path", path).Int("rows", len(rows)).Int("columns", len(header)).Msg("Table exported")
	return nil
}

// Message exports the table of msg into dir and returns the written path
func Message(msg domain.Message, dir string, now time.Time, opts Options) (string, error) {
	if !msg.HasTable() {
		return "", fmt.Errorf("message has no table to export")
	}

	path := filepath.Join(dir, Filename(now))
	table := msg.Result.Table
	if err := Tabular(table.Columns, table.Rows, path, opts); err != nil {
		return "", err
	}
	return path, nil
}

// cellValue maps decoded JSON values onto types the sheet writer accepts
func cellValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, int, int64:
		return val
	default:
		return fmt.Sprint(val)
	}
}

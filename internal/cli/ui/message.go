package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// MaxTableRows is how many rows of a table are printed inline
const MaxTableRows = 20

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sqlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).PaddingLeft(2)
)

// RenderMessage formats one conversation turn for the terminal
func RenderMessage(msg domain.Message) string {
	var b strings.Builder

	switch {
	case msg.Role == domain.RoleUser:
		b.WriteString(boldColor.Sprint("> " + msg.Text))
	case msg.Failed:
		b.WriteString(errorColor.Sprint(msg.Text))
	default:
		b.WriteString(msg.Text)
	}

	p := msg.Result
	if p.Empty() {
		return b.String()
	}

	if p.Trace != "" {
		b.WriteString("\n\n" + infoColor.Sprint("Generated SQL:") + "\n" + sqlStyle.Render(p.Trace))
	}
	if p.Table != nil {
		b.WriteString("\n\n" + RenderTable(p.Table))
	}
	if p.Series != nil {
		b.WriteString("\n\n" + RenderSeries(p.Series))
	}
	if p.Hint != "" {
		b.WriteString("\n\n" + dimColor.Sprint("Hint: "+p.Hint))
	}
	return b.String()
}

// RenderTable draws the first MaxTableRows rows followed by the row count
func RenderTable(t *domain.Table) string {
	rows := t.Rows
	if len(rows) > MaxTableRows {
		rows = rows[:MaxTableRows]
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(t.Columns...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, row := range rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = FormatCell(row[col])
		}
		tbl.Row(cells...)
	}

	summary := fmt.Sprintf("(%d rows)", len(t.Rows))
	if len(t.Rows) == 1 {
		summary = "(1 row)"
	}
	if len(t.Rows) > MaxTableRows {
		summary = fmt.Sprintf("(showing %d of %d rows, use /export for all)", MaxTableRows, len(t.Rows))
	}
	return tbl.String() + "\n" + dimColor.Sprint(summary)
}

// RenderSeries lists the points of a series one per line
func RenderSeries(s *domain.Series) string {
	lines := make([]string, 0, len(s.Points)+1)
	lines = append(lines, infoColor.Sprint("Series:"))
	for _, p := range s.Points {
		lines = append(lines, fmt.Sprintf("  %s: %s", FormatCell(p.X), FormatCell(p.Y)))
	}
	return strings.Join(lines, "\n")
}

// FormatCell renders a decoded JSON value; whole numbers print without a fraction
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

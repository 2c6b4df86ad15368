package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"Jan", "Jan"},
		{100.0, "100"},
		{12.5, "12.5"},
		{true, "true"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.in))
		})
	}
}

func TestRenderMessage(t *testing.T) {
	msg := domain.Message{
		Role: domain.RoleAssistant,
		Text: "Here is revenue by month",
		Result: &domain.ResultPayload{
			Table: &domain.Table{
				Columns: []string{"month", "revenue"},
				Rows: []domain.Row{
					{"month": "Jan", "revenue": 100.0},
					{"month": "Feb", "revenue": 120.0},
				},
			},
			Series: &domain.Series{Points: []domain.Point{{X: "Jan", Y: 100.0}}},
			Trace:  "SELECT month, revenue FROM sales",
			Hint:   "Try filtering by region",
		},
	}

	out := RenderMessage(msg)
	assert.Contains(t, out, "Here is revenue by month")
	assert.Contains(t, out, "Generated SQL:")
	assert.Contains(t, out, "SELECT month, revenue FROM sales")
	assert.Contains(t, out, "revenue")
	assert.Contains(t, out, "120")
	assert.Contains(t, out, "(2 rows)")
	assert.Contains(t, out, "Jan: 100")
	assert.Contains(t, out, "Hint: Try filtering by region")

	plain := RenderMessage(domain.Message{Role: domain.RoleAssistant, Text: "Hello"})
	assert.Equal(t, "Hello", plain)
}

func TestRenderMessage_FailedReply(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = noColor })

	failed := RenderMessage(domain.NewErrorMessage(errors.New("connection refused")))
	assert.Contains(t, failed, "Error: connection refused")
	assert.Contains(t, failed, "\x1b[31")

	// An answer that merely starts with "Error: " is not a failure
	answer := RenderMessage(domain.Message{Role: domain.RoleAssistant, Text: "Error: rate is 2%"})
	assert.Equal(t, "Error: rate is 2%", answer)
}

func TestRenderTable_Truncates(t *testing.T) {
	rows := make([]domain.Row, MaxTableRows+5)
	for i := range rows {
		rows[i] = domain.Row{"n": float64(i)}
	}

	out := RenderTable(&domain.Table{Columns: []string{"n"}, Rows: rows})
	assert.Contains(t, out, fmt.Sprintf("showing %d of %d rows", MaxTableRows, MaxTableRows+5))
	assert.NotContains(t, out, fmt.Sprint(MaxTableRows+4))
}

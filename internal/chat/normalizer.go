package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// Facet names used in omission reports
const (
	FacetText   = "text"
	FacetTable  = "table"
	FacetSeries = "series"
	FacetTrace  = "trace"
	FacetHint   = "hint"
)

// Omission records a part of a backend payload that could not be used as-is
type Omission struct {
	Facet  string
	Reason string
}

func (o Omission) String() string {
	return o.Facet + ": " + o.Reason
}

// wirePayload mirrors the answer body. Fields stay raw so that one malformed
// facet never prevents the others from being read.
type wirePayload struct {
	Answer    json.RawMessage `json:"answer"`
	Text      json.RawMessage `json:"text"`
	Content   json.RawMessage `json:"content"`
	Role      json.RawMessage `json:"role"`
	CreatedAt json.RawMessage `json:"created_at"`
	Columns   json.RawMessage `json:"columns"`
	Data      json.RawMessage `json:"data"`
	SQL       json.RawMessage `json:"sql"`
	GraphData json.RawMessage `json:"graphData"`
	Hint      json.RawMessage `json:"hint"`
}

// Normalize converts a query answer body into an assistant message.
// Missing or malformed facets are dropped and reported; only a body that is
// not a JSON object is an error.
func Normalize(body []byte) (domain.Message, []Omission, error) {
	var wire wirePayload
	if err := decodeObject(body, &wire); err != nil {
		return domain.Message{}, nil, fmt.Errorf("failed to decode response: %w", err)
	}

	n := &normalizer{}
	msg := domain.Message{
		Role:      domain.RoleAssistant,
		Text:      n.text(wire.Answer, FacetText),
		CreatedAt: time.Now(),
	}

	payload := n.payload(wire)
	if !payload.Empty() {
		msg.Result = payload
	}

	n.report("query")
	return msg, n.omissions, nil
}

// NormalizeHistory converts a history body into ordered messages. Items with an
// unknown role are skipped; user messages never keep a payload.
func NormalizeHistory(body []byte) ([]domain.Message, []Omission, error) {
	var wire struct {
		Messages []json.RawMessage `json:"messages"`
	}
	if err := decodeObject(body, &wire); err != nil {
		return nil, nil, fmt.Errorf("failed to decode history: %w", err)
	}

	n := &normalizer{}
	messages := make([]domain.Message, 0, len(wire.Messages))
	for i, raw := range wire.Messages {
		var item wirePayload
		if err := decodeObject(raw, &item); err != nil {
			n.omit("message", fmt.Sprintf("item %d is not an object", i))
			continue
		}

		var role domain.MessageRole
		if err := json.Unmarshal(item.Role, &role); err != nil || !role.Valid() {
			n.omit("message", fmt.Sprintf("item %d has unknown role %s", i, string(item.Role)))
			continue
		}

		textField := item.Text
		if isNull(textField) {
			textField = item.Content
		}

		msg := domain.Message{
			Role:      role,
			Text:      n.text(textField, FacetText),
			CreatedAt: parseTime(item.CreatedAt),
		}

		if role == domain.RoleAssistant {
			payload := n.payload(item)
			if !payload.Empty() {
				msg.Result = payload
			}
		}

		messages = append(messages, msg)
	}

	n.report("history")
	return messages, n.omissions, nil
}

type normalizer struct {
	omissions []Omission
}

func (n *normalizer) omit(facet, reason string) {
	n.omissions = append(n.omissions, Omission{Facet: facet, Reason: reason})
}

func (n *normalizer) report(source string) {
	for _, o := range n.omissions {
		log.Warn().
			Str("source", source).
			Str("facet", o.Facet).
			Str("reason", o.Reason).
			Msg("Payload degraded")
	}
}

func (n *normalizer) payload(wire wirePayload) *domain.ResultPayload {
	return &domain.ResultPayload{
		Table:  n.table(wire.Columns, wire.Data),
		Series: n.series(wire.GraphData),
		Trace:  n.text(wire.SQL, FacetTrace),
		Hint:   n.text(wire.Hint, FacetHint),
	}
}

// text decodes an optional string field; absent and null yield ""
func (n *normalizer) text(raw json.RawMessage, facet string) string {
	if isNull(raw) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		n.omit(facet, "not a string")
		return ""
	}
	return s
}

// table builds the tabular facet. Both columns and data must be present.
// Duplicate column names keep their first position; declared columns missing
// from a row are filled with nil.
func (n *normalizer) table(rawColumns, rawData json.RawMessage) *domain.Table {
	hasColumns, hasData := !isNull(rawColumns), !isNull(rawData)
	switch {
	case !hasColumns && !hasData:
		return nil
	case !hasColumns:
		n.omit(FacetTable, "data present without columns")
		return nil
	case !hasData:
		n.omit(FacetTable, "columns present without data")
		return nil
	}

	var declared []any
	if err := json.Unmarshal(rawColumns, &declared); err != nil {
		n.omit(FacetTable, "columns is not a list")
		return nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(rawData, &records); err != nil {
		n.omit(FacetTable, "data is not a list")
		return nil
	}

	columns := make([]string, 0, len(declared))
	seen := make(map[string]bool, len(declared))
	for _, c := range declared {
		name, ok := c.(string)
		if !ok {
			name = fmt.Sprint(c)
		}
		if seen[name] {
			n.omit(FacetTable, fmt.Sprintf("duplicate column %q dropped", name))
			continue
		}
		seen[name] = true
		columns = append(columns, name)
	}

	rows := make([]domain.Row, 0, len(records))
	filled := 0
	for i, rec := range records {
		var row domain.Row
		if err := decodeObject(rec, &row); err != nil {
			n.omit(FacetTable, fmt.Sprintf("row %d is not an object", i))
			continue
		}
		for _, c := range columns {
			if _, ok := row[c]; !ok {
				row[c] = nil
				filled++
			}
		}
		rows = append(rows, row)
	}
	if filled > 0 {
		n.omit(FacetTable, fmt.Sprintf("%d missing cell(s) filled with null", filled))
	}

	return &domain.Table{Columns: columns, Rows: rows}
}

// series builds the single-line chart facet from {x, y} samples
func (n *normalizer) series(raw json.RawMessage) *domain.Series {
	if isNull(raw) {
		return nil
	}

	var samples []json.RawMessage
	if err := json.Unmarshal(raw, &samples); err != nil {
		n.omit(FacetSeries, "graphData is not a list")
		return nil
	}

	points := make([]domain.Point, 0, len(samples))
	for i, s := range samples {
		var sample map[string]any
		if err := decodeObject(s, &sample); err != nil {
			n.omit(FacetSeries, fmt.Sprintf("sample %d is not an object", i))
			continue
		}
		points = append(points, domain.Point{X: sample["x"], Y: sample["y"]})
	}

	return &domain.Series{Points: points}
}

// decodeObject unmarshals raw into v, rejecting anything but a JSON object
func decodeObject(raw []byte, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func parseTime(raw json.RawMessage) time.Time {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

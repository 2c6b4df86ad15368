package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/config"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// Markers the answer formatter may embed in the answer text
const (
	graphMarker = "GRAPH_DATA:"
	hintMarker  = "HINT:"
)

const (
	noDataAnswer      = "I could not find data for that question."
	queryFailedAnswer = "I found a query for that question but it failed to run."
)

// QueryRunner executes read-only SQL against a live data source
type QueryRunner interface {
	Run(ctx context.Context, sql string) ([]string, []domain.Row, error)
}

// Fixture is one canned answer
type Fixture struct {
	Question  string
	Answer    string
	Columns   []string
	Data      []domain.Row
	SQL       string
	GraphData []domain.Point
	Hint      string
}

// FixturesFromConfig converts configured fixtures
func FixturesFromConfig(cfgs []config.FixtureConfig) []Fixture {
	fixtures := make([]Fixture, 0, len(cfgs))
	for _, c := range cfgs {
		f := Fixture{
			Question: c.Question,
			Answer:   c.Answer,
			Columns:  c.Columns,
			SQL:      c.SQL,
			Hint:     c.Hint,
		}
		for _, row := range c.Data {
			f.Data = append(f.Data, domain.Row(row))
		}
		for _, p := range c.GraphData {
			f.GraphData = append(f.GraphData, domain.Point{X: p["x"], Y: p["y"]})
		}
		fixtures = append(fixtures, f)
	}
	return fixtures
}

// AnswerBook answers questions from fixtures. Fixtures that carry SQL but no
// rows are run through the QueryRunner when one is set.
type AnswerBook struct {
	fixtures map[string]Fixture
	runner   QueryRunner
}

// NewAnswerBook indexes fixtures by normalized question. runner may be nil.
func NewAnswerBook(fixtures []Fixture, runner QueryRunner) *AnswerBook {
	b := &AnswerBook{
		fixtures: make(map[string]Fixture, len(fixtures)),
		runner:   runner,
	}
	for _, f := range fixtures {
		b.fixtures[normalizeQuestion(f.Question)] = f
	}
	return b
}

// Questions returns the known questions, sorted
func (b *AnswerBook) Questions() []string {
	questions := make([]string, 0, len(b.fixtures))
	for _, f := range b.fixtures {
		questions = append(questions, f.Question)
	}
	sort.Strings(questions)
	return questions
}

// Answer builds the response for question
func (b *AnswerBook) Answer(ctx context.Context, question string) domain.QueryResponse {
	f, ok := b.fixtures[normalizeQuestion(question)]
	if !ok {
		if DetectIntent(question) == IntentConversation {
			return domain.QueryResponse{Answer: ConversationalReply(question)}
		}
		resp := domain.QueryResponse{Answer: noDataAnswer}
		if questions := b.Questions(); len(questions) > 0 {
			resp.Hint = "Try: " + strings.Join(questions, "; ")
		}
		return resp
	}

	text, graph, hint := ParseMarkers(f.Answer)
	resp := domain.QueryResponse{
		Answer: text,
		Facets: domain.Facets{
			SQL:       f.SQL,
			GraphData: graph,
			Hint:      hint,
		},
	}
	if len(f.GraphData) > 0 {
		resp.GraphData = f.GraphData
	}
	if f.Hint != "" {
		resp.Hint = f.Hint
	}
	if len(f.Data) > 0 {
		resp.Columns = f.Columns
		resp.Data = f.Data
		return resp
	}

	if f.SQL != "" && b.runner != nil {
		columns, rows, err := b.runner.Run(ctx, f.SQL)
		if err != nil {
			log.Error().Err(err).Str("sql", f.SQL).Msg("Fixture query failed")
			resp.Answer = queryFailedAnswer
			resp.GraphData = nil
			return resp
		}
		if len(rows) > 0 {
			resp.Columns = columns
			resp.Data = rows
		}
	}
	return resp
}

// ParseMarkers splits graph data and a hint out of formatted answer text.
// Unparseable graph data is dropped.
func ParseMarkers(answer string) (string, []domain.Point, string) {
	var graph []domain.Point
	if before, after, found := strings.Cut(answer, graphMarker); found {
		answer = strings.TrimSpace(before)
		if err := json.Unmarshal([]byte(strings.TrimSpace(after)), &graph); err != nil {
			log.Warn().Err(err).Msg("Discarding unparseable graph data")
			graph = nil
		}
	}

	var hint string
	if before, after, found := strings.Cut(answer, hintMarker); found {
		answer = strings.TrimSpace(before)
		hint = strings.TrimSpace(after)
	}

	return answer, graph, hint
}

func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

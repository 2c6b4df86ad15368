package domain

import "time"

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one the conversation model knows about
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn in a conversation.
// A user message never carries a Result; only assistant messages may.
type Message struct {
	Role      MessageRole    `json:"role"`
	Text      string         `json:"text"`
	Result    *ResultPayload `json:"result,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	// Failed marks the synthetic reply standing in for a failed query
	Failed bool `json:"-"`
}

// NewUserMessage creates a user message with the given text
func NewUserMessage(text string) Message {
	return Message{
		Role:      RoleUser,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// NewErrorMessage creates the synthetic assistant message that stands in
// for a failed query. It never carries a payload.
func NewErrorMessage(err error) Message {
	return Message{
		Role:      RoleAssistant,
		Text:      "Error: " + err.Error(),
		CreatedAt: time.Now(),
		Failed:    true,
	}
}

// HasTable reports whether the message carries a tabular facet
func (m Message) HasTable() bool {
	return m.Result != nil && m.Result.Table != nil
}

// Row is a single record of a tabular result, keyed by column name
type Row map[string]any

// Table is the tabular facet: ordered unique column names plus row records
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"data"`
}

// Point is one sample of a single-line series
type Point struct {
	X any `json:"x"`
	Y any `json:"y"`
}

// Series is the time-series facet
type Series struct {
	Points []Point `json:"points"`
}

// ResultPayload holds the optional structured facets of an assistant message.
// Facets are independent; any combination may be present.
type ResultPayload struct {
	Table  *Table  `json:"table,omitempty"`
	Series *Series `json:"series,omitempty"`
	Trace  string  `json:"trace,omitempty"`
	Hint   string  `json:"hint,omitempty"`
}

// Empty reports whether no facet is set
func (p *ResultPayload) Empty() bool {
	return p == nil || (p.Table == nil && p.Series == nil && p.Trace == "" && p.Hint == "")
}

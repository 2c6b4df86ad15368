package domain

import "time"

// QueryRequest is the body of POST /query
type QueryRequest struct {
	Question  string `json:"question" validate:"required,max=2000"`
	SessionID string `json:"session_id,omitempty"`
}

// Facets are the optional structured parts of an answer as sent on the wire
type Facets struct {
	Data      []Row    `json:"data,omitempty"`
	Columns   []string `json:"columns,omitempty"`
	SQL       string   `json:"sql,omitempty"`
	GraphData []Point  `json:"graphData,omitempty"`
	Hint      string   `json:"hint,omitempty"`
}

// QueryResponse is the body returned by POST /query.
// Only Answer is guaranteed; every other field is optional.
type QueryResponse struct {
	Answer string `json:"answer"`
	Facets
}

// NewSessionResponse is the body returned by POST /session/new
type NewSessionResponse struct {
	SessionID string `json:"session_id"`
}

// HistoryMessage is one stored turn as returned by GET /session/{id}/history
type HistoryMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
	Facets
}

// HistoryResponse is the body returned by GET /session/{id}/history
type HistoryResponse struct {
	Messages []HistoryMessage `json:"messages"`
}

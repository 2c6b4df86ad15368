package domain

import "strings"

// Session is a server-tracked conversation. The identifier is opaque and
// assigned by the backend; the client never deletes sessions.
type Session struct {
	ID string `json:"session_id"`
}

// Label returns the short display label derived from the identifier prefix
func (s Session) Label() string {
	prefix, _, _ := strings.Cut(s.ID, "-")
	return "Session " + prefix
}

package chat

// AuthContext is the credential and active session a request is issued with.
// Values are immutable; changes produce a new value.
type AuthContext struct {
	token     string
	sessionID string
}

// NewAuthContext creates a context from an optional token and session
func NewAuthContext(token, sessionID string) AuthContext {
	return AuthContext{token: token, sessionID: sessionID}
}

func (a AuthContext) Token() string {
	return a.token
}

func (a AuthContext) SessionID() string {
	return a.sessionID
}

// Authenticated reports whether a bearer token is held
func (a AuthContext) Authenticated() bool {
	return a.token != ""
}

// WithToken returns a copy carrying token
func (a AuthContext) WithToken(token string) AuthContext {
	a.token = token
	return a
}

// WithSession returns a copy bound to sessionID
func (a AuthContext) WithSession(sessionID string) AuthContext {
	a.sessionID = sessionID
	return a
}

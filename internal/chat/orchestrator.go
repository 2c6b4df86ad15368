package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

var validate = validator.New()

// Backend is the remote query service as seen by the orchestrator
type Backend interface {
	Login(ctx context.Context, username, password string) (string, error)
	CreateSession(ctx context.Context, token string) (string, error)
	ListSessions(ctx context.Context, token string) ([]domain.Session, error)
	History(ctx context.Context, token, sessionID string) ([]byte, error)
	Query(ctx context.Context, token, sessionID, question string) ([]byte, error)
}

// Orchestrator sequences session changes and queries against the backend.
// All state transitions happen under mu; backend calls run without it.
type Orchestrator struct {
	backend  Backend
	registry *Registry
	log      *ConversationLog

	// seed serializes EnsureSession so concurrent callers share one session
	seed sync.Mutex

	mu       sync.Mutex
	auth     AuthContext
	inflight map[string]chan struct{}
	// epoch changes whenever the log is cleared or replaced
	epoch uint64
}

// NewOrchestrator creates an orchestrator starting from auth.
// A session in auth becomes the active one with an empty log.
func NewOrchestrator(backend Backend, auth AuthContext) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		registry: NewRegistry(),
		log:      NewConversationLog(),
		auth:     auth,
		inflight: make(map[string]chan struct{}),
	}
	if id := auth.SessionID(); id != "" {
		o.registry.SetActive(id)
	}
	return o
}

// Context returns the current auth context
func (o *Orchestrator) Context() AuthContext {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.auth
}

// Messages returns a snapshot of the active conversation
func (o *Orchestrator) Messages() []domain.Message {
	return o.log.Messages()
}

// LastTable returns the most recent tabular answer in the active conversation
func (o *Orchestrator) LastTable() (domain.Message, bool) {
	return o.log.LastTable()
}

// Sessions returns the known sessions without contacting the backend
func (o *Orchestrator) Sessions() []domain.Session {
	return o.registry.List()
}

// ActiveSession returns the active session ID, or "" when none
func (o *Orchestrator) ActiveSession() string {
	return o.registry.Active()
}

// MessageCount returns the length of the active conversation
func (o *Orchestrator) MessageCount() int {
	return o.log.Len()
}

// Busy reports whether the active conversation has a query in flight
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, busy := o.inflight[o.auth.SessionID()]
	return busy
}

// SubmitQuery sends a question for the active session and appends both the
// question and the reply to the log. Blank input is ignored. Without an
// active session it returns ErrNoActiveSession and the log is untouched.
// Backend and decoding failures become an error reply instead of a returned error.
func (o *Orchestrator) SubmitQuery(ctx context.Context, text string) (domain.Message, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return domain.Message{}, nil
	}

	o.mu.Lock()
	auth := o.auth
	sessionID := auth.SessionID()
	if sessionID == "" {
		o.mu.Unlock()
		return domain.Message{}, domain.ErrNoActiveSession
	}
	if _, busy := o.inflight[sessionID]; busy {
		o.mu.Unlock()
		return domain.Message{}, domain.ErrQueryInFlight
	}
	done := make(chan struct{})
	o.inflight[sessionID] = done
	epoch := o.epoch
	o.log.Append(domain.NewUserMessage(question))
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inflight, sessionID)
		o.mu.Unlock()
		close(done)
	}()

	reply, err := o.ask(ctx, auth, question)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Query failed")
		reply = domain.NewErrorMessage(err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch != epoch || o.auth.SessionID() != sessionID {
		log.Info().Str("session_id", sessionID).Msg("Discarding reply for inactive session")
		return reply, domain.ErrStaleResponse
	}
	o.log.Append(reply)
	return reply, nil
}

func (o *Orchestrator) ask(ctx context.Context, auth AuthContext, question string) (domain.Message, error) {
	body, err := o.backend.Query(ctx, auth.Token(), auth.SessionID(), question)
	if err != nil {
		return domain.Message{}, err
	}

	reply, _, err := Normalize(body)
	if err != nil {
		return domain.Message{}, err
	}
	return reply, nil
}

// CreateSession asks the backend for a new session and makes it active with
// an empty log. On failure nothing changes.
func (o *Orchestrator) CreateSession(ctx context.Context) (string, error) {
	auth := o.Context()

	id, err := o.backend.CreateSession(ctx, auth.Token())
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.activate(id, nil)

	log.Info().Str("session_id", id).Msg("Session created")
	return id, nil
}

// EnsureSession returns the active session, creating one first when there is
// none. created reports whether a new session was made.
func (o *Orchestrator) EnsureSession(ctx context.Context) (id string, created bool, err error) {
	o.seed.Lock()
	defer o.seed.Unlock()

	if id := o.Context().SessionID(); id != "" {
		return id, false, nil
	}

	id, err = o.CreateSession(ctx)
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// SwitchSession waits for the active conversation to go idle, loads the
// target's history and makes it active. On failure nothing changes.
func (o *Orchestrator) SwitchSession(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidSession
	}

	if err := o.waitIdle(ctx); err != nil {
		return err
	}

	auth := o.Context()
	body, err := o.backend.History(ctx, auth.Token(), id)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSessionSwitch, err)
	}

	messages, _, err := NormalizeHistory(body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrSessionSwitch, err)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.activate(id, messages)

	log.Info().Str("session_id", id).Int("messages", len(messages)).Msg("Session switched")
	return nil
}

// activate must be called with mu held
func (o *Orchestrator) activate(id string, messages []domain.Message) {
	o.registry.SetActive(id)
	o.auth = o.auth.WithSession(id)
	if messages == nil {
		o.log.Clear()
	} else {
		o.log.Replace(messages)
	}
	o.epoch++
}

// waitIdle blocks until the active conversation has no query in flight
func (o *Orchestrator) waitIdle(ctx context.Context) error {
	for {
		o.mu.Lock()
		done, busy := o.inflight[o.auth.SessionID()]
		o.mu.Unlock()
		if !busy {
			return nil
		}

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ListSessions fetches the session listing and merges it into the registry
func (o *Orchestrator) ListSessions(ctx context.Context) ([]domain.Session, error) {
	auth := o.Context()

	sessions, err := o.backend.ListSessions(ctx, auth.Token())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	o.registry.Replace(sessions)
	return o.registry.List(), nil
}

// Login exchanges credentials for a token. A failed login drops any token held before.
func (o *Orchestrator) Login(ctx context.Context, username, password string) error {
	req := domain.LoginRequest{Username: username, Password: password}
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	token, err := o.backend.Login(ctx, req.Username, req.Password)

	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.auth = o.auth.WithToken("")
		log.Warn().Err(err).Str("username", username).Msg("Login failed")
		return fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	o.auth = o.auth.WithToken(token)
	log.Info().Str("username", username).Msg("Logged in")
	return nil
}

// Logout drops the token, the session list and the active conversation
func (o *Orchestrator) Logout() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.auth = AuthContext{}
	o.registry.Reset()
	o.log.Clear()
	o.epoch++
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// ChatService answers questions and records conversation history
type ChatService struct {
	repo    domain.HistoryRepository
	answers *AnswerBook
}

// NewChatService creates a new chat service
func NewChatService(repo domain.HistoryRepository, answers *AnswerBook) *ChatService {
	return &ChatService{
		repo:    repo,
		answers: answers,
	}
}

// CreateSession registers a new empty session
func (s *ChatService) CreateSession(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	if err := s.repo.CreateSession(ctx, id); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// ListSessions returns all sessions, newest first
func (s *ChatService) ListSessions(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// History returns the messages of a session, oldest first
func (s *ChatService) History(ctx context.Context, sessionID uuid.UUID) ([]domain.HistoryMessage, error) {
	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if messages == nil {
		messages = []domain.HistoryMessage{}
	}
	return messages, nil
}

// Ask answers a question inside a session. An empty session ID starts a new
// session; the response does not report which one.
func (s *ChatService) Ask(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	requestID := uuid.NewString()
	startTime := time.Now()

	sessionID := uuid.New()
	if req.SessionID != "" {
		parsed, err := uuid.Parse(req.SessionID)
		if err != nil {
			return nil, domain.ErrInvalidSession
		}
		sessionID = parsed
	}

	question := strings.TrimSpace(req.Question)

	// History is best effort; a failed write never fails the answer.
	userMsg := domain.HistoryMessage{
		Role:      domain.RoleUser,
		Content:   question,
		CreatedAt: startTime.UTC(),
	}
	if err := s.repo.SaveMessage(ctx, sessionID, userMsg); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to save user message")
	}

	resp := s.answers.Answer(ctx, question)

	assistantMsg := domain.HistoryMessage{
		Role:      domain.RoleAssistant,
		Content:   resp.Answer,
		CreatedAt: time.Now().UTC(),
		Facets:    resp.Facets,
	}
	if err := s.repo.SaveMessage(ctx, sessionID, assistantMsg); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("Failed to save assistant message")
	}

	log.Info().
		Str("request_id", requestID).
		Str("session_id", sessionID.String()).
		Int("rows", len(resp.Data)).
		Dur("latency", time.Since(startTime)).
		Msg("Query answered")

	return &resp, nil
}

// Ping checks the history store
func (s *ChatService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

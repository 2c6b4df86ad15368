package domain

import (
	"context"

	"github.com/google/uuid"
)

// HistoryRepository stores sessions and their messages
type HistoryRepository interface {
	CreateSession(ctx context.Context, id uuid.UUID) error
	// ListSessions returns sessions newest first
	ListSessions(ctx context.Context) ([]Session, error)
	// SaveMessage registers the session when it is not known yet
	SaveMessage(ctx context.Context, sessionID uuid.UUID, msg HistoryMessage) error
	// ListMessages returns messages oldest first; unknown sessions have none
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]HistoryMessage, error)
	Ping(ctx context.Context) error
	Close() error
}

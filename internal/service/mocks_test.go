package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// MockHistoryRepository mocks the HistoryRepository interface
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) CreateSession(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListSessions(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockHistoryRepository) SaveMessage(ctx context.Context, sessionID uuid.UUID, msg domain.HistoryMessage) error {
	args := m.Called(ctx, sessionID, msg)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.HistoryMessage, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryMessage), args.Error(1)
}

func (m *MockHistoryRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHistoryRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

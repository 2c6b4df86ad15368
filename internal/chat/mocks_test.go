package chat

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// MockBackend mocks the Backend interface
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) CreateSession(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) ListSessions(ctx context.Context, token string) ([]domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockBackend) History(ctx context.Context, token, sessionID string) ([]byte, error) {
	args := m.Called(ctx, token, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBackend) Query(ctx context.Context, token, sessionID, question string) ([]byte, error) {
	args := m.Called(ctx, token, sessionID, question)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

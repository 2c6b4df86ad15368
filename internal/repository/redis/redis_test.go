package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// Requires a reachable Redis; set TEST_REDIS_ADDR to run.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Requires redis connection - run as integration test")
	}

	c := NewFromRedis(goredis.NewClient(&goredis.Options{Addr: addr}))
	require.NoError(t, c.Ping(context.Background()))
	t.Cleanup(func() { c.Close() })
	return c
}

type MockHistoryRepository struct {
	mock.Mock
	domain.HistoryRepository
}

func (m *MockHistoryRepository) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.HistoryMessage, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.HistoryMessage), args.Error(1)
}

func (m *MockHistoryRepository) SaveMessage(ctx context.Context, sessionID uuid.UUID, msg domain.HistoryMessage) error {
	args := m.Called(ctx, sessionID, msg)
	return args.Error(0)
}

func TestCachedHistory_ReadThrough(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	sessionID := uuid.New()

	repo := new(MockHistoryRepository)
	history := []domain.HistoryMessage{{Role: domain.RoleUser, Content: "hello"}}
	repo.On("ListMessages", ctx, sessionID).Return(history, nil).Once()

	cached := NewCachedHistory(repo, NewHistoryCache(client, 0))
	defer cached.cache.Invalidate(ctx, sessionID)

	first, err := cached.ListMessages(ctx, sessionID)
	require.NoError(t, err)
	second, err := cached.ListMessages(ctx, sessionID)
	require.NoError(t, err)

	assert.Equal(t, "hello", first[0].Content)
	assert.Equal(t, first[0].Content, second[0].Content)
	repo.AssertNumberOfCalls(t, "ListMessages", 1)

	msg := domain.HistoryMessage{Role: domain.RoleAssistant, Content: "hi"}
	repo.On("SaveMessage", ctx, sessionID, msg).Return(nil).Once()
	require.NoError(t, cached.SaveMessage(ctx, sessionID, msg))

	_, ok, err := cached.cache.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRateLimiter_Allow(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	limiter := NewRateLimiter(client, 2, 1)
	defer limiter.Reset(ctx, key)

	for i := 0; i < 3; i++ {
		allowed, _, _, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Zero(t, remaining)
}

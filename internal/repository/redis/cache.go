package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

const (
	historyCachePrefix = "history:"
	defaultHistoryTTL  = 5 * time.Minute
)

// HistoryCache caches session histories in Redis
type HistoryCache struct {
	client *Client
	ttl    time.Duration
}

// NewHistoryCache creates a new history cache
func NewHistoryCache(client *Client, ttl time.Duration) *HistoryCache {
	if ttl <= 0 {
		ttl = defaultHistoryTTL
	}
	return &HistoryCache{client: client, ttl: ttl}
}

func historyKey(sessionID uuid.UUID) string {
	return historyCachePrefix + sessionID.String()
}

// Get retrieves a cached history. A miss returns ok == false.
func (c *HistoryCache) Get(ctx context.Context, sessionID uuid.UUID) ([]domain.HistoryMessage, bool, error) {
	data, err := c.client.rdb.Get(ctx, historyKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read history cache: %w", err)
	}

	var messages []domain.HistoryMessage
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return messages, true, nil
}

// Set caches the history of a session
func (c *HistoryCache) Set(ctx context.Context, sessionID uuid.UUID, messages []domain.HistoryMessage) error {
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	return c.client.rdb.Set(ctx, historyKey(sessionID), data, c.ttl).Err()
}

// Invalidate removes the cached history of a session
func (c *HistoryCache) Invalidate(ctx context.Context, sessionID uuid.UUID) error {
	return c.client.rdb.Del(ctx, historyKey(sessionID)).Err()
}

// CachedHistory is a read-through cache in front of a history repository.
// Cache failures are logged and fall back to the repository.
type CachedHistory struct {
	domain.HistoryRepository
	cache *HistoryCache
}

// NewCachedHistory wraps repo with cache
func NewCachedHistory(repo domain.HistoryRepository, cache *HistoryCache) *CachedHistory {
	return &CachedHistory{HistoryRepository: repo, cache: cache}
}

func (c *CachedHistory) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]domain.HistoryMessage, error) {
	messages, ok, err := c.cache.Get(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("History cache read failed")
	}
	if ok {
		return messages, nil
	}

	messages, err = c.HistoryRepository.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, sessionID, messages); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("History cache write failed")
	}
	return messages, nil
}

func (c *CachedHistory) SaveMessage(ctx context.Context, sessionID uuid.UUID, msg domain.HistoryMessage) error {
	if err := c.HistoryRepository.SaveMessage(ctx, sessionID, msg); err != nil {
		return err
	}

	if err := c.cache.Invalidate(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID.String()).Msg("History cache invalidation failed")
	}
	return nil
}

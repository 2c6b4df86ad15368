package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/text-to-sql-chat/internal/config"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// Requires a reachable PostgreSQL; set TEST_POSTGRES_HOST to run.
func openTestRepository(t *testing.T) *HistoryRepository {
	t.Helper()
	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("Requires database connection - run as integration test")
	}

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "texttosql",
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Database: "texttosql",
		SSLMode:  "disable",
		MaxConns: 2,
		MinConns: 1,
	}
	repo, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestHistoryRepository_RoundTrip(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	sessionID := uuid.New()

	require.NoError(t, repo.SaveMessage(ctx, sessionID, domain.HistoryMessage{
		Role:    domain.RoleUser,
		Content: "count orders",
	}))
	require.NoError(t, repo.SaveMessage(ctx, sessionID, domain.HistoryMessage{
		Role:    domain.RoleAssistant,
		Content: "12",
		Facets:  domain.Facets{SQL: "SELECT COUNT(*) FROM orders"},
	}))

	messages, err := repo.ListMessages(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "count orders", messages[0].Content)
	assert.Equal(t, "SELECT COUNT(*) FROM orders", messages[1].SQL)

	sessions, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	assert.Contains(t, sessions, domain.Session{ID: sessionID.String()})
}

func TestPoolConfig(t *testing.T) {
	base := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "chat", SSLMode: "disable"}

	tests := []struct {
		name     string
		max, min int32
		wantMax  int32
		wantMin  int32
	}{
		{"configured", 4, 2, 4, 2},
		{"default max", 0, 1, defaultMaxConns, 1},
		{"min capped at max", 3, 8, 3, 3},
		{"negative min", 5, -1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.MaxConns, cfg.MinConns = tt.max, tt.min

			poolCfg, err := poolConfig(cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMax, poolCfg.MaxConns)
			assert.Equal(t, tt.wantMin, poolCfg.MinConns)
			assert.Equal(t, historyIdleTimeout, poolCfg.MaxConnIdleTime)
			assert.Equal(t, "db", poolCfg.ConnConfig.Host)
		})
	}
}

func TestHasFacets(t *testing.T) {
	assert.False(t, hasFacets(domain.Facets{}))
	assert.True(t, hasFacets(domain.Facets{Hint: "x"}))
	assert.True(t, hasFacets(domain.Facets{Columns: []string{}}))
}

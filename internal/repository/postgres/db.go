package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/config"
)

const (
	defaultMaxConns    = 10
	historyIdleTimeout = 5 * time.Minute
)

// Open applies the history schema and returns a repository on a fresh pool
func Open(ctx context.Context, cfg config.DatabaseConfig) (*HistoryRepository, error) {
	if err := RunMigrations(cfg.DSN()); err != nil {
		return nil, err
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Database).
		Int32("max_conns", pool.Config().MaxConns).
		Msg("History store opened")
	return NewHistoryRepository(pool), nil
}

// poolConfig derives the pool settings for the history store. History traffic
// is two writes and at most one read per question, so the pool stays small.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	if poolCfg.MaxConns <= 0 {
		poolCfg.MaxConns = defaultMaxConns
	}
	poolCfg.MinConns = min(max(cfg.MinConns, 0), poolCfg.MaxConns)
	poolCfg.MaxConnIdleTime = historyIdleTimeout
	return poolCfg, nil
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/config"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

const executorConnection = "default"

// Executor runs read-only SQL against the configured data source
type Executor struct {
	router *Router
	cfg    config.DataSourceConfig
}

// NewExecutor connects to the configured data source through router
func NewExecutor(ctx context.Context, router *Router, cfg config.DataSourceConfig) (*Executor, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("data source driver not configured")
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 1000
	}

	e := &Executor{router: router, cfg: cfg}
	if _, err := e.adapter(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Executor) adapter(ctx context.Context) (Adapter, error) {
	return e.router.GetAdapter(ctx, executorConnection, e.cfg.Driver, ConnectionConfig{
		Host:     e.cfg.Host,
		Port:     e.cfg.Port,
		Database: e.cfg.Database,
		Username: e.cfg.User,
		Password: e.cfg.Password,
		SSLMode:  e.cfg.SSLMode,
	})
}

// Run executes sql and returns its columns and column-keyed rows
func (e *Executor) Run(ctx context.Context, sql string) ([]string, []domain.Row, error) {
	adapter, err := e.adapter(ctx)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	result, err := adapter.ExecuteQuery(ctx, sql, QueryOptions{
		MaxRows: e.cfg.MaxRows,
		Timeout: e.cfg.QueryTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	log.Debug().
		Str("driver", e.cfg.Driver).
		Int("rows", len(result.Rows)).
		Bool("truncated", result.Truncated).
		Dur("latency", time.Since(start)).
		Msg("Query executed")

	return result.UniqueColumns(), result.Records(), nil
}

// Close releases the pooled connection
func (e *Executor) Close() error {
	return e.router.CloseConnection(executorConnection)
}

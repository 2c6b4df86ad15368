package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Rrens/text-to-sql-chat/internal/datasource"
)

// Adapter implements datasource.Adapter for PostgreSQL
type Adapter struct {
	pool *pgxpool.Pool
}

// NewAdapter creates a new PostgreSQL adapter
func NewAdapter() datasource.Adapter {
	return &Adapter{}
}

// DatabaseType returns the database type identifier
func (a *Adapter) DatabaseType() string {
	return "postgres"
}

// Connect establishes connection to PostgreSQL
func (a *Adapter) Connect(ctx context.Context, config datasource.ConnectionConfig) error {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
		config.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping: %w", err)
	}

	a.pool = pool
	return nil
}

// Close closes the connection
func (a *Adapter) Close() error {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	return nil
}

// HealthCheck verifies connection is alive
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.pool == nil {
		return fmt.Errorf("not connected")
	}
	return a.pool.Ping(ctx)
}

// ValidateQuery validates SQL is safe to execute
func (a *Adapter) ValidateQuery(sql string) error {
	return datasource.ValidateSQL(sql, datasource.PostgresBlockedPatterns)
}

// ExecuteQuery executes read-only SQL query
func (a *Adapter) ExecuteQuery(ctx context.Context, sql string, opts datasource.QueryOptions) (*datasource.QueryResult, error) {
	if err := a.ValidateQuery(sql); err != nil {
		return nil, err
	}
	if a.pool == nil {
		return nil, fmt.Errorf("not connected")
	}

	sql = datasource.EnforceLimit(sql, opts.MaxRows+1)

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	rows, err := a.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	columns := make([]string, len(fieldDescs))
	for i, fd := range fieldDescs {
		columns[i] = fd.Name
	}

	var resultRows [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to get row values: %w", err)
		}
		for i, v := range values {
			values[i] = jsonValue(v)
		}
		resultRows = append(resultRows, values)

		if len(resultRows) > opts.MaxRows {
			break
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return datasource.Truncate(columns, resultRows, opts.MaxRows), nil
}

// jsonValue maps driver values without a useful JSON form onto strings
func jsonValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	default:
		return val
	}
}

package datasource

import (
	"context"
	"time"

	"github.com/Rrens/text-to-sql-chat/internal/domain"
)

// QueryResult contains query execution result
type QueryResult struct {
	Columns   []string `json:"columns"`
	Rows      [][]any  `json:"rows"`
	Truncated bool     `json:"truncated"`
}

// Records converts positional rows into column-keyed records. A repeated
// column name keeps its first value.
func (r *QueryResult) Records() []domain.Row {
	records := make([]domain.Row, 0, len(r.Rows))
	for _, values := range r.Rows {
		row := make(domain.Row, len(r.Columns))
		for i, col := range r.Columns {
			if _, seen := row[col]; seen || i >= len(values) {
				continue
			}
			row[col] = values[i]
		}
		records = append(records, row)
	}
	return records
}

// UniqueColumns returns the column names without repeats, in order
func (r *QueryResult) UniqueColumns() []string {
	seen := make(map[string]bool, len(r.Columns))
	columns := make([]string, 0, len(r.Columns))
	for _, col := range r.Columns {
		if !seen[col] {
			seen[col] = true
			columns = append(columns, col)
		}
	}
	return columns
}

// ConnectionConfig contains database connection parameters
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

// QueryOptions contains query execution options
type QueryOptions struct {
	MaxRows int
	Timeout time.Duration
}

// Adapter defines the interface for database adapters
type Adapter interface {
	// DatabaseType returns the database type identifier (sqlite, postgres, mysql)
	DatabaseType() string

	// Connect establishes connection to database
	Connect(ctx context.Context, config ConnectionConfig) error

	// Close closes the connection
	Close() error

	// HealthCheck verifies connection is alive
	HealthCheck(ctx context.Context) error

	// ValidateQuery validates SQL is safe to execute
	ValidateQuery(sql string) error

	// ExecuteQuery executes read-only SQL query
	ExecuteQuery(ctx context.Context, sql string, opts QueryOptions) (*QueryResult, error)
}

// AdapterFactory creates a new adapter instance
type AdapterFactory func() Adapter

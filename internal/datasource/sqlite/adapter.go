package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Rrens/text-to-sql-chat/internal/datasource"
)

// Adapter implements datasource.Adapter for SQLite
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a new SQLite adapter
func NewAdapter() datasource.Adapter {
	return &Adapter{}
}

// DatabaseType returns the database type identifier
func (a *Adapter) DatabaseType() string {
	return "sqlite"
}

// Connect opens the SQLite database file read-only
func (a *Adapter) Connect(ctx context.Context, config datasource.ConnectionConfig) error {
	// For SQLite, Database field holds the file path
	dbPath := config.Database
	if dbPath == "" {
		return fmt.Errorf("database file path is required")
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	return nil
}

// Close closes the connection
func (a *Adapter) Close() error {
	if a.db != nil {
		err := a.db.Close()
		a.db = nil
		return err
	}
	return nil
}

// HealthCheck verifies connection is alive
func (a *Adapter) HealthCheck(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("not connected")
	}
	return a.db.PingContext(ctx)
}

// ValidateQuery validates SQL is safe to execute
func (a *Adapter) ValidateQuery(sql string) error {
	return datasource.ValidateSQL(sql, datasource.SqliteBlockedPatterns)
}

// ExecuteQuery executes read-only SQL query
func (a *Adapter) ExecuteQuery(ctx context.Context, sqlStr string, opts datasource.QueryOptions) (*datasource.QueryResult, error) {
	if err := a.ValidateQuery(sqlStr); err != nil {
		return nil, err
	}
	return datasource.QuerySQL(ctx, a.db, sqlStr, opts)
}

package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Rrens/text-to-sql-chat/internal/datasource"
)

// Adapter implements datasource.Adapter for MySQL
type Adapter struct {
	db *sql.DB
}

// NewAdapter creates a new MySQL adapter
func NewAdapter() datasource.Adapter {
	return &Adapter{}
}

// DatabaseType returns the database type identifier
func (a *Adapter) DatabaseType() string {
	return "mysql"
}

// DSN builds the driver connection string
func DSN(config datasource.ConnectionConfig) string {
	cfg := mysql.NewConfig()
	cfg.User = config.Username
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", config.Host, config.Port)
	cfg.DBName = config.Database
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second

	if config.SSLMode == "require" || config.SSLMode == "verify-full" {
		cfg.TLSConfig = "true"
	}
	return cfg.FormatDSN()
}

// Connect establishes connection to MySQL
func (a *Adapter) Connect(ctx context.Context, config datasource.ConnectionConfig) error {
	db, err := sql.Open("mysql", DSN(config))
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping: %w", err)
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
	return datasource.ValidateSQL(sql, datasource.MysqlBlockedPatterns)
}

// ExecuteQuery executes read-only SQL query
func (a *Adapter) ExecuteQuery(ctx context.Context, sql string, opts datasource.QueryOptions) (*datasource.QueryResult, error) {
	if err := a.ValidateQuery(sql); err != nil {
		return nil, err
	}
	return datasource.QuerySQL(ctx, a.db, sql, opts)
}

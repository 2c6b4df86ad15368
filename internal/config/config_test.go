package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Client.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Client.Timeout)
	assert.True(t, cfg.Export.Strict)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.False(t, cfg.DataSource.Enabled())
	assert.Equal(t, 1000, cfg.DataSource.MaxRows)
	assert.Equal(t, 30*time.Second, cfg.DataSource.QueryTimeout)
}

func TestLoadFile_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
client:
  base_url: http://api.internal:9000
  timeout: 5s
export:
  strict: false
datasource:
  driver: sqlite
  database: ./demo.db
  max_rows: 50
fixtures:
  - question: show revenue by month
    answer: Here is the data
    columns: [month, revenue]
    data:
      - month: Jan
        revenue: 100
    sql: SELECT month, revenue FROM sales
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CHAT_TOKEN", "env-token")
	t.Setenv("DATASOURCE_PASSWORD", "s3cret")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:9000", cfg.Client.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "env-token", cfg.Client.Token)
	assert.False(t, cfg.Export.Strict)
	assert.True(t, cfg.DataSource.Enabled())
	assert.Equal(t, "./demo.db", cfg.DataSource.Database)
	assert.Equal(t, 50, cfg.DataSource.MaxRows)
	assert.Equal(t, "s3cret", cfg.DataSource.Password)

	require.Len(t, cfg.Fixtures, 1)
	f := cfg.Fixtures[0]
	assert.Equal(t, "show revenue by month", f.Question)
	assert.Equal(t, []string{"month", "revenue"}, f.Columns)
	require.Len(t, f.Data, 1)
	assert.Equal(t, "Jan", f.Data[0]["month"])
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Database: "chat", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/chat?sslmode=disable", c.DSN())
}

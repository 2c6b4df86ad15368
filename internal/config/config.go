package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Client   ClientConfig    `mapstructure:"client"`
	Export   ExportConfig    `mapstructure:"export"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Server   ServerConfig    `mapstructure:"server"`
	Auth     AuthConfig      `mapstructure:"auth"`
	Store    StoreConfig     `mapstructure:"store"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Security   SecurityConfig   `mapstructure:"security"`
	DataSource DataSourceConfig `mapstructure:"datasource"`
	Fixtures   []FixtureConfig  `mapstructure:"fixtures"`
}

// ClientConfig configures the chat client
type ClientConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Token    string        `mapstructure:"token"`
	Username string        `mapstructure:"username"`
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Strict bool   `mapstructure:"strict"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
	MaxAge       time.Duration `mapstructure:"max_age"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	Username       string        `mapstructure:"username"`
	PasswordHash   string        `mapstructure:"password_hash"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// StoreConfig selects the history store of the development server
type StoreConfig struct {
	Driver     string         `mapstructure:"driver"`
	SQLitePath string         `mapstructure:"sqlite_path"`
	Database   DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// DataSourceConfig points the development server at a database that fixture
// SQL is run against. An empty driver disables live queries.
type DataSourceConfig struct {
	Driver       string        `mapstructure:"driver"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Database     string        `mapstructure:"database"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxRows      int           `mapstructure:"max_rows"`
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
}

func (c DataSourceConfig) Enabled() bool {
	return c.Driver != ""
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type SecurityConfig struct {
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// FixtureConfig is one canned answer served by the development server
type FixtureConfig struct {
	Question  string           `mapstructure:"question"`
	Answer    string           `mapstructure:"answer"`
	Columns   []string         `mapstructure:"columns"`
	Data      []map[string]any `mapstructure:"data"`
	SQL       string           `mapstructure:"sql"`
	GraphData []map[string]any `mapstructure:"graph_data"`
	Hint      string           `mapstructure:"hint"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}
	return LoadFile(configPath)
}

// LoadFile reads configuration from the given path. A missing file is not an error.
func LoadFile(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Client
	v.SetDefault("client.base_url", "http://localhost:8000")
	v.SetDefault("client.timeout", "60s")

	// Export
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.strict", true)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.rotation_time", "24h")
	v.SetDefault("logging.max_age", "168h") // 7 days

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Auth
	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.access_token_ttl", "12h")

	// Store
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "chat_history.db")
	v.SetDefault("store.database.host", "localhost")
	v.SetDefault("store.database.port", 5432)
	v.SetDefault("store.database.user", "texttosql")
	v.SetDefault("store.database.database", "texttosql")
	v.SetDefault("store.database.ssl_mode", "disable")
	v.SetDefault("store.database.max_conns", 10)
	v.SetDefault("store.database.min_conns", 1)

	// Data source
	v.SetDefault("datasource.ssl_mode", "disable")
	v.SetDefault("datasource.max_rows", 1000)
	v.SetDefault("datasource.query_timeout", "30s")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "5m")

	// Security
	v.SetDefault("security.rate_limit.requests_per_minute", 60)
	v.SetDefault("security.rate_limit.burst", 10)
}

func bindEnvVars(v *viper.Viper) {
	// Client
	v.BindEnv("client.base_url", "CHAT_SERVER")
	v.BindEnv("client.token", "CHAT_TOKEN")
	v.BindEnv("client.username", "CHAT_USERNAME")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")

	// Auth
	v.BindEnv("auth.password_hash", "AUTH_PASSWORD_HASH")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// Store
	v.BindEnv("store.driver", "STORE_DRIVER")
	v.BindEnv("store.database.password", "POSTGRES_PASSWORD")

	// Data source
	v.BindEnv("datasource.driver", "DATASOURCE_DRIVER")
	v.BindEnv("datasource.password", "DATASOURCE_PASSWORD")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Gateway error policies accepted in catalog.gateway_error_policy.
const (
	GatewayErrorPolicyNotify    = "notify"
	GatewayErrorPolicyPropagate = "propagate"
)

// Defaults applied when the catalog section leaves paging unset.
const (
	DefaultPerPage = 10
	DefaultMaxPage = 100
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Catalog  CatalogConfig  `koanf:"catalog"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds per-client rate limiting settings: at most Limit
// requests per Period.
type RateLimitConfig struct {
	Enabled bool   `koanf:"enabled"`
	Limit   int64  `koanf:"limit"`
	Period  string `koanf:"period"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver      string         `koanf:"driver"`
	SQLite      SQLiteConfig   `koanf:"sqlite"`
	Postgres    PostgresConfig `koanf:"postgres"`
	Pool        PoolConfig     `koanf:"pool"`
	AutoMigrate bool           `koanf:"auto_migrate"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// CatalogConfig holds category use case settings.
type CatalogConfig struct {
	GatewayErrorPolicy string `koanf:"gateway_error_policy"`
	DefaultPerPage     int    `koanf:"default_per_page"`
	MaxPerPage         int    `koanf:"max_per_page"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__CATALOG__GATEWAY_ERROR_POLICY=propagate overrides
// catalog.gateway_error_policy.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps APP__DATABASE__POOL__MAX_IDLE_CONNS to database.pool.max_idle_conns.
func envKey(s string) string {
	key := strings.TrimPrefix(s, "APP__")
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

// Validate checks cross-field constraints and supported values, normalizing
// whitespace and filling catalog defaults.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	return c.validateCatalog()
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	// Whitespace-only durations mean unset.
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)
	c.Server.RateLimit.Period = strings.TrimSpace(c.Server.RateLimit.Period)

	if err := validatePositiveDuration("server.timeout", c.Server.Timeout); err != nil {
		return err
	}
	if err := validatePositiveDuration("server.cors.max_age", c.Server.CORS.MaxAge); err != nil {
		return err
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.Limit <= 0 {
			return fmt.Errorf("invalid server.rate_limit.limit %d: must be positive when rate limiting is enabled", c.Server.RateLimit.Limit)
		}
		if c.Server.RateLimit.Period == "" {
			return fmt.Errorf("server.rate_limit.period is required when rate limiting is enabled")
		}
		if err := validatePositiveDuration("server.rate_limit.period", c.Server.RateLimit.Period); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)
	return validatePositiveDuration("database.pool.conn_max_lifetime", c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres

	host := strings.TrimSpace(pg.Host)
	if host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}
	user := strings.TrimSpace(pg.User)
	if user == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	dbName := strings.TrimSpace(pg.DBName)
	if dbName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	sslMode := strings.TrimSpace(pg.SSLMode)
	switch sslMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
	}
	if c.Server.Mode == gin.ReleaseMode {
		switch sslMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	}

	pg.Host = host
	pg.User = user
	pg.DBName = dbName
	pg.SSLMode = sslMode
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	cat := &c.Catalog

	policy := strings.ToLower(strings.TrimSpace(cat.GatewayErrorPolicy))
	switch policy {
	case "":
		policy = GatewayErrorPolicyNotify
	case GatewayErrorPolicyNotify, GatewayErrorPolicyPropagate:
	default:
		return fmt.Errorf("invalid catalog.gateway_error_policy %q: must be one of %q, %q", cat.GatewayErrorPolicy, GatewayErrorPolicyNotify, GatewayErrorPolicyPropagate)
	}
	cat.GatewayErrorPolicy = policy

	if cat.DefaultPerPage < 0 {
		return fmt.Errorf("invalid catalog.default_per_page %d: must not be negative", cat.DefaultPerPage)
	}
	if cat.MaxPerPage < 0 {
		return fmt.Errorf("invalid catalog.max_per_page %d: must not be negative", cat.MaxPerPage)
	}
	if cat.DefaultPerPage == 0 {
		cat.DefaultPerPage = DefaultPerPage
	}
	if cat.MaxPerPage == 0 {
		cat.MaxPerPage = DefaultMaxPage
	}
	if cat.DefaultPerPage > cat.MaxPerPage {
		return fmt.Errorf("invalid catalog.default_per_page %d: must not exceed catalog.max_per_page %d", cat.DefaultPerPage, cat.MaxPerPage)
	}
	return nil
}

// validatePositiveDuration accepts an empty value or a Go duration greater
// than zero.
func validatePositiveDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: must be a valid duration (e.g. \"30s\", \"1h\"): %w", key, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", key, value)
	}
	return nil
}

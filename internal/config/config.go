// Package config provides unified configuration loading for the support engine.
// Supports YAML files, a local .env file, environment variables, and
// programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the support engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Cache         CacheConfig         `yaml:"cache"`
	Matching      MatchingConfig      `yaml:"matching"`
	Conversation  ConversationConfig  `yaml:"conversation"`
	Notify        NotifyConfig        `yaml:"notify"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	JournalMode  string `yaml:"journal_mode"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig holds reply cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// MatchingConfig holds FAQ matching thresholds and weights. Zero values fall
// back to the engine defaults, so a config file only needs to name what it
// changes.
type MatchingConfig struct {
	AcceptThreshold    float64  `yaml:"accept_threshold"`
	ClarifyThreshold   float64  `yaml:"clarify_threshold"`
	ClarifyBandEnabled bool     `yaml:"clarify_band_enabled"`
	KeywordWeight      float64  `yaml:"keyword_weight"`
	IntentBoost        float64  `yaml:"intent_boost"`
	TokenSortWeight    float64  `yaml:"token_sort_weight"`
	PartialWeight      float64  `yaml:"partial_weight"`
	TokenSetWeight     float64  `yaml:"token_set_weight"`
	MinKeywordLength   int      `yaml:"min_keyword_length"`
	IntentMarkers      []string `yaml:"intent_markers"`
	StopWords          []string `yaml:"stop_words"`
}

// ConversationConfig holds orchestration settings.
type ConversationConfig struct {
	HistoryWindow     int      `yaml:"history_window"`
	HandoffPhrase     string   `yaml:"handoff_phrase"`
	Affirmatives      []string `yaml:"affirmatives"`
	ReplyCacheEnabled bool     `yaml:"reply_cache_enabled"`
}

// NotifyConfig holds agent notification settings.
type NotifyConfig struct {
	AgentEmail string     `yaml:"agent_email"`
	SMTP       SMTPConfig `yaml:"smtp"`
}

// SMTPConfig holds SMTP delivery settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
// A .env file in the working directory is loaded first, if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path:         "/tmp/support-engine.db",
				MaxOpenConns: 1,
				JournalMode:  "WAL",
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Matching: MatchingConfig{},
		Conversation: ConversationConfig{
			HistoryWindow:     5,
			HandoffPhrase:     "human agent",
			Affirmatives:      []string{"yes", "ok", "sure"},
			ReplyCacheEnabled: true,
		},
		Notify: NotifyConfig{
			SMTP: SMTPConfig{
				Port: 587,
				From: "noreply@astrotamil.com",
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "debug",
			LogFormat:   "json",
			ServiceName: "support-engine",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Conversation.HistoryWindow < 1 {
		return fmt.Errorf("history_window must be at least 1")
	}

	if c.Matching.AcceptThreshold != 0 &&
		(c.Matching.AcceptThreshold < 0 || c.Matching.AcceptThreshold > 1) {
		return fmt.Errorf("accept_threshold must be in [0, 1]")
	}

	return nil
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("ADMIN_EMAIL"); v != "" {
		cfg.Notify.AgentEmail = v
	}

	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Notify.SMTP.Host = v
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Notify.SMTP.Port = port
		}
	}

	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Notify.SMTP.Username = v
	}

	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Notify.SMTP.Password = v
	}

	if v := os.Getenv("EMAIL_FROM_ADDRESS"); v != "" {
		cfg.Notify.SMTP.From = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// Package common provides shared utilities for GiftScan
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for GiftScan
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Report      ReportConfig    `toml:"report"`
	Ingest      IngestConfig    `toml:"ingest"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the symbol store backend.
type StorageConfig struct {
	Backend  string         `toml:"backend"` // "surrealdb" or "file"
	Surreal  SurrealConfig  `toml:"surrealdb"`
	Snapshot SnapshotConfig `toml:"snapshot"`
}

// SurrealConfig holds SurrealDB connection settings.
type SurrealConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// SnapshotConfig holds the flat CSV snapshot location.
type SnapshotConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo    YahooConfig    `toml:"yahoo"`
	Telegram TelegramConfig `toml:"telegram"`
}

// YahooConfig holds quote provider configuration
type YahooConfig struct {
	BaseURL      string `toml:"base_url"`
	MarketSuffix string `toml:"market_suffix"` // appended to every symbol, e.g. ".NS"
	RateLimit    int    `toml:"rate_limit"`
	Timeout      string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// TelegramConfig holds Telegram bot API configuration
type TelegramConfig struct {
	BaseURL   string `toml:"base_url"`
	BotToken  string `toml:"bot_token"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TelegramConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ReportConfig controls how reports are delivered.
type ReportConfig struct {
	Delivery  string `toml:"delivery"`   // "file" or "messages"
	BatchSize int    `toml:"batch_size"` // rows per message in "messages" mode
	QueueSize int    `toml:"queue_size"` // pending run buffer
}

// GetBatchSize returns the rows-per-message limit for batched delivery.
func (c *ReportConfig) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return 10
	}
	return c.BatchSize
}

// GetQueueSize returns the pending run buffer size.
func (c *ReportConfig) GetQueueSize() int {
	if c.QueueSize <= 0 {
		return 16
	}
	return c.QueueSize
}

// IngestConfig holds the symbol ingestion job settings.
type IngestConfig struct {
	ExportsDir string `toml:"exports_dir"` // directory of exchange CSV exports
}

// SchedulerConfig holds the optional cron-driven report settings.
type SchedulerConfig struct {
	Enabled      bool   `toml:"enabled"`
	Cron         string `toml:"cron"`    // e.g. "0 7 * * *"
	ChatID       string `toml:"chat_id"` // default destination for scheduled reports
	OnlyDiscount bool   `toml:"only_discount"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "file",
			Surreal: SurrealConfig{
				Address:   "ws://localhost:8000",
				Username:  "root",
				Password:  "root",
				Namespace: "giftscan",
				Database:  "giftscan",
			},
			Snapshot: SnapshotConfig{Path: "data/all_stocks_list.csv"},
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:      "https://query1.finance.yahoo.com",
				MarketSuffix: ".NS",
				RateLimit:    5,
				Timeout:      "30s",
			},
			Telegram: TelegramConfig{
				BaseURL:   "https://api.telegram.org",
				RateLimit: 1,
				Timeout:   "30s",
			},
		},
		Report: ReportConfig{
			Delivery:  "file",
			BatchSize: 10,
			QueueSize: 16,
		},
		Ingest: IngestConfig{
			ExportsDir: "csvs",
		},
		Scheduler: SchedulerConfig{
			Enabled:      false,
			Cron:         "0 7 * * *",
			OnlyDiscount: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("GIFTSCAN_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("GIFTSCAN_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("GIFTSCAN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("GIFTSCAN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("GIFTSCAN_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("GIFTSCAN_SNAPSHOT_PATH"); path != "" {
		config.Storage.Snapshot.Path = path
	}

	if addr := os.Getenv("GIFTSCAN_SURREAL_ADDRESS"); addr != "" {
		config.Storage.Surreal.Address = addr
	}
	if user := os.Getenv("GIFTSCAN_SURREAL_USERNAME"); user != "" {
		config.Storage.Surreal.Username = user
	}
	if pass := os.Getenv("GIFTSCAN_SURREAL_PASSWORD"); pass != "" {
		config.Storage.Surreal.Password = pass
	}

	// TELEGRAM_TOKEN matches the variable the bot was originally deployed with.
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		config.Clients.Telegram.BotToken = token
	}
	if token := os.Getenv("GIFTSCAN_TELEGRAM_TOKEN"); token != "" {
		config.Clients.Telegram.BotToken = token
	}
	if chatID := os.Getenv("GIFTSCAN_TELEGRAM_CHAT_ID"); chatID != "" {
		config.Scheduler.ChatID = chatID
	}

	if dir := os.Getenv("GIFTSCAN_EXPORTS_DIR"); dir != "" {
		config.Ingest.ExportsDir = dir
	}
}

// validateConfig checks enum-valued settings.
func validateConfig(config *Config) error {
	switch config.Storage.Backend {
	case "surrealdb", "file":
	default:
		return fmt.Errorf("invalid storage backend %q (expected \"surrealdb\" or \"file\")", config.Storage.Backend)
	}

	switch config.Report.Delivery {
	case "file", "messages":
	default:
		return fmt.Errorf("invalid report delivery %q (expected \"file\" or \"messages\")", config.Report.Delivery)
	}

	return nil
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

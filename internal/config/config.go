package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Backends a ledger document can be stored in.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds every setting of the fintrack binaries. Values come from an
// optional TOML file (FINTRACK_CONFIG) overridden by environment variables.
type Config struct {
	// HTTP Server
	Port string `toml:"port"`

	// Storage
	DataBackend string `toml:"backend"`
	DataPath    string `toml:"data_path"`
	SQLitePath  string `toml:"sqlite_path"`

	// AMQP; events are disabled when the URL is empty
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Google Sheets report export
	GoogleSpreadsheetID      string `toml:"google_spreadsheet_id"`
	GoogleSheetName          string `toml:"google_sheet_name"`
	GoogleServiceAccountJSON string `toml:"-"`
	GoogleServiceAccountFile string `toml:"google_service_account_file"`

	// Worker
	ExportInterval time.Duration `toml:"-"`

	// Report cache
	CacheSize int           `toml:"cache_size"`
	CacheTTL  time.Duration `toml:"-"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// fileConfig mirrors Config for the TOML file; durations are written as
// strings ("15m").
type fileConfig struct {
	Config
	ExportInterval string `toml:"export_interval"`
	CacheTTL       string `toml:"cache_ttl"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:            "8081",
		DataBackend:     BackendJSON,
		DataPath:        "finances_data.json",
		SQLitePath:      "./data/fintrack.db",
		AMQPExchange:    "fintrack",
		AMQPQueue:       "ledger_events",
		GoogleSheetName: "Report",
		ExportInterval:  15 * time.Minute,
		CacheSize:       64,
		CacheTTL:        5 * time.Minute,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load builds the configuration from defaults, the optional TOML file named by
// FINTRACK_CONFIG and the environment, in that order of precedence.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv("FINTRACK_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	fc := fileConfig{Config: *c}
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if fc.ExportInterval != "" {
		d, err := time.ParseDuration(fc.ExportInterval)
		if err != nil {
			return fmt.Errorf("config file %s: export_interval: %w", path, err)
		}
		fc.Config.ExportInterval = d
	}
	if fc.CacheTTL != "" {
		d, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return fmt.Errorf("config file %s: cache_ttl: %w", path, err)
		}
		fc.Config.CacheTTL = d
	}
	*c = fc.Config
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)

	c.DataBackend = strings.ToLower(getEnv("FINTRACK_BACKEND", c.DataBackend))
	c.DataPath = getEnv("FINTRACK_DATA_PATH", c.DataPath)
	c.SQLitePath = getEnv("FINTRACK_SQLITE_PATH", c.SQLitePath)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", c.GoogleSheetName)
	c.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", c.GoogleServiceAccountJSON)
	c.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", c.GoogleServiceAccountFile)

	c.ExportInterval = getEnvDuration("EXPORT_INTERVAL", c.ExportInterval)
	c.CacheSize = getEnvInt("FINTRACK_CACHE_SIZE", c.CacheSize)
	c.CacheTTL = getEnvDuration("FINTRACK_CACHE_TTL", c.CacheTTL)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
}

// EventsEnabled reports whether ledger changes are published over AMQP.
func (c *Config) EventsEnabled() bool {
	return strings.TrimSpace(c.AMQPURL) != ""
}

// SheetsEnabled reports whether month reports go to Google Sheets.
func (c *Config) SheetsEnabled() bool {
	return strings.TrimSpace(c.GoogleSpreadsheetID) != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{BackendJSON, BackendSQLite, BackendMemory}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendJSON && strings.TrimSpace(c.DataPath) == "" {
		errors = append(errors, "data path cannot be empty when using json backend")
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == BackendSQLite {
		if c.SQLitePath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLitePath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Google Sheets export needs service account credentials
	if c.SheetsEnabled() && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS must be provided for sheets export")
	}
	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	// Validate worker configuration
	if c.ExportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache ttl %v: must not be negative", c.CacheTTL))
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

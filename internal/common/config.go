package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Dictionary DictionaryConfig
	Database   DatabaseConfig
	Server     ServerConfig
	Admin      AdminConfig
	LLM        LLMConfig
	Ingest     IngestConfig
	Log        LogConfig
}

// DictionaryConfig holds operator dictionary configuration
type DictionaryConfig struct {
	Path     string
	Watch    bool
	Debounce time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // postgres | sqlite
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// AdminConfig guards administrative actions such as dictionary reloads.
type AdminConfig struct {
	DictionaryToken string
}

// LLMConfig holds LLM-related configuration. An empty APIKey disables the LLM extractor.
type LLMConfig struct {
	BaseURL           string
	Model             string
	APIKey            string
	Temperature       float32
	Timeout           time.Duration
	RequestsPerSecond float64
}

// IngestConfig holds inbox/queue configuration
type IngestConfig struct {
	InboxDir         string
	InboxTelegramID  int64 // owner of receipts dropped into InboxDir
	InboxUsername    string
	Pdftotext        string // optional pdftotext binary for PDFs without a parsable text layer
	Workers          int
	QueueSize        int
	OperatorCacheTTL time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string // text | json
}

// LoadConfig loads configuration from environment variables, reading an optional .env first.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	return &Config{
		Dictionary: DictionaryConfig{
			Path:     getEnv("OPERATORS_DICTIONARY_PATH", "data/operators_dict.json"),
			Watch:    getEnvAsBool("DICTIONARY_WATCH", false),
			Debounce: getEnvAsDuration("DICTIONARY_WATCH_DEBOUNCE", 500*time.Millisecond),
		},
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "postgres"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Admin: AdminConfig{
			DictionaryToken: getEnv("DICT_ADMIN_TOKEN", ""),
		},
		LLM: LLMConfig{
			BaseURL:           getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			Model:             getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			Temperature:       getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:           getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			RequestsPerSecond: getEnvAsFloat64("OPENAI_RPS", 2),
		},
		Ingest: IngestConfig{
			InboxDir:         getEnv("INBOX_DIR", ""),
			InboxTelegramID:  getEnvAsInt64("INBOX_TELEGRAM_ID", 0),
			InboxUsername:    getEnv("INBOX_USERNAME", "inbox"),
		Pdftotext:        getEnv("PDFTOTEXT_BIN", ""),
			Workers:          getEnvAsInt("INGEST_WORKERS", 4),
			QueueSize:        getEnvAsInt("INGEST_QUEUE_SIZE", 256),
			OperatorCacheTTL: getEnvAsDuration("OPERATOR_CACHE_TTL", time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dictionary.Path) == "" {
		return NewAppError("CONFIG_ERROR", "OPERATORS_DICTIONARY_PATH is required", ErrInvalidInput)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be postgres or sqlite", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Ingest.InboxDir != "" && c.Ingest.InboxTelegramID == 0 {
		return NewAppError("CONFIG_ERROR", "INBOX_TELEGRAM_ID is required when INBOX_DIR is set", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}

// NewLogger builds the process logger from LogConfig.
func NewLogger(cfg LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

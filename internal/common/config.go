package common

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AckPolicy controls whether a queue message is removed after a failed item.
type AckPolicy string

const (
	// AckAlways removes the message regardless of the processing outcome.
	// This is at-most-once delivery: a transient failure loses the item.
	AckAlways AckPolicy = "always"
	// AckOnSuccess leaves failed messages for queue redelivery.
	AckOnSuccess AckPolicy = "on-success"
)

// Config holds all application configuration.
type Config struct {
	Queue   QueueConfig
	Store   StoreConfig
	Poll    PollConfig
	Vault   VaultConfig
	Search  SearchConfig
	Logging LoggingConfig
}

// QueueConfig holds work-queue configuration.
type QueueConfig struct {
	Name              string
	MaxMessages       int32
	VisibilityTimeout time.Duration
	WaitTime          time.Duration
	Ack               AckPolicy
}

// StoreConfig holds document-store and record-table configuration.
type StoreConfig struct {
	Bucket string
	Table  string
}

// PollConfig bounds the blocking wait on asynchronous extraction jobs.
type PollConfig struct {
	Interval time.Duration
	MaxWait  time.Duration
}

// VaultConfig holds the external CMS connection settings.
type VaultConfig struct {
	DomainName      string
	Username        string
	Password        string
	CustomFieldName string
	// MinConfidence is the floor below which tags are not pushed back,
	// on the record confidence scale of 0 to 100.
	MinConfidence float64
}

// SearchConfig holds the search index endpoint and index name.
type SearchConfig struct {
	Endpoint string
	Index    string
}

// LoggingConfig holds log level selection.
type LoggingConfig struct {
	Level string
}

// LoadConfig loads configuration from environment variables. Values arriving
// through deployment parameters may be URL-encoded, so every string passes
// through url.QueryUnescape.
func LoadConfig() *Config {
	// A .env file is a local-dev convenience; absence is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		Queue: QueueConfig{
			Name:              getEnv("QUEUE_NAME", ""),
			MaxMessages:       int32(getEnvAsInt("QUEUE_MAX_MESSAGES", 10)),
			VisibilityTimeout: getEnvAsDuration("QUEUE_VISIBILITY_TIMEOUT", 90*time.Second),
			WaitTime:          getEnvAsDuration("QUEUE_WAIT_TIME", 3*time.Second),
			Ack:               parseAckPolicy(getEnv("ACK_POLICY", string(AckAlways))),
		},
		Store: StoreConfig{
			Bucket: getEnv("BUCKET_NAME", ""),
			Table:  getEnv("DDB_TABLE", ""),
		},
		Poll: PollConfig{
			Interval: getEnvAsDuration("POLL_INTERVAL", 2*time.Second),
			MaxWait:  getEnvAsDuration("POLL_MAX_WAIT", 10*time.Minute),
		},
		Vault: VaultConfig{
			DomainName:      getEnv("VEEVA_DOMAIN_NAME", ""),
			Username:        getEnv("VEEVA_DOMAIN_USERNAME", ""),
			Password:        getEnv("VEEVA_DOMAIN_PASSWORD", ""),
			CustomFieldName: getEnv("VEEVA_CUSTOM_FIELD_NAME", ""),
			MinConfidence:   getEnvAsFloat("VEEVA_MIN_CONFIDENCE", 90.0),
		},
		Search: SearchConfig{
			Endpoint: getEnv("ES_ENDPOINT", ""),
			Index:    getEnv("ES_INDEX", "tag_records"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
}

// LogLevel maps the configured level name onto a slog level.
func (c *Config) LogLevel() slog.Level {
	switch c.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseAckPolicy(s string) AckPolicy {
	if AckPolicy(s) == AckOnSuccess {
		return AckOnSuccess
	}
	return AckAlways
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if unescaped, err := url.QueryUnescape(value); err == nil {
		return unescaped
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

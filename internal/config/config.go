package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Data layout
	DataDir   string
	PublicDir string

	// Completion provider
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// HTTP client
	HTTPTimeout time.Duration

	// Scenario resolution
	ClassifierEnabled     bool
	ClassifyHistoryWindow int
	ReplyHistoryWindow    int

	// Conversation store bounds
	ConversationMaxEntries int
	ConversationTTL        time.Duration

	// Resilience
	MaxConcurrency int

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
// The API key has no default; without it provider calls fail with the
// provider's own authentication error, which is not specially handled.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 3000),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir:   getEnv("DATA_DIR", "./database"),
		PublicDir: getEnv("PUBLIC_DIR", "./public"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://bothub.chat/api/v2/openai/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 60*time.Second),

		ClassifierEnabled:     getEnv("CLASSIFIER_ENABLED", "true") == "true",
		ClassifyHistoryWindow: getEnvInt("CLASSIFY_HISTORY_WINDOW", 8),
		ReplyHistoryWindow:    getEnvInt("REPLY_HISTORY_WINDOW", 6),

		ConversationMaxEntries: getEnvInt("CONVERSATION_MAX_ENTRIES", 1000),
		ConversationTTL:        getEnvDuration("CONVERSATION_TTL", 30*time.Minute),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

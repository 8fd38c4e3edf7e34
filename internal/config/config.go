// Package config provides environment configuration, per-agent tier
// settings, and logger setup.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LLMProvider identifies the response generation backend.
type LLMProvider string

const (
	ProviderOllama    LLMProvider = "ollama"
	ProviderOpenAI    LLMProvider = "openai"
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderNone      LLMProvider = "none"
)

// Config holds all process-level configuration values.
// Per-agent tier settings live in TierConfig, resolved separately.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Embedding
	EmbeddingProvider string // "ollama", "voyage", or "offline"
	EmbeddingModel    string
	OllamaHost        string
	VoyageAPIKey      string

	// Response generation
	LLMProvider     LLMProvider
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Background workers
	Workers         int
	MaintenanceCron string // cron expression for the periodic sweep, empty disables
	TierConfigFile  string // optional YAML file with per-agent overrides

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables with documented
// defaults.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "memtier"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "memory"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		EmbeddingProvider: getEnv("MEMTIER_EMBEDDING_PROVIDER", "ollama"),
		EmbeddingModel:    getEnv("MEMTIER_EMBEDDING_MODEL", "all-minilm:l6-v2"),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		VoyageAPIKey:      os.Getenv("VOYAGE_API_KEY"),

		LLMProvider:     LLMProvider(getEnv("MEMTIER_LLM_PROVIDER", "none")),
		LLMModel:        getEnv("MEMTIER_LLM_MODEL", "llama3.2"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),

		Workers:         getEnvInt("MEMTIER_WORKERS", 4),
		MaintenanceCron: getEnv("MEMTIER_MAINTENANCE_CRON", "@every 10m"),
		TierConfigFile:  getEnv("MEMTIER_TIER_CONFIG", ""),

		LogFile:  getEnv("MEMTIER_LOG_FILE", "/tmp/memtier.log"),
		LogLevel: parseLogLevel(getEnv("MEMTIER_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

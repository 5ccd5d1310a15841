package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Completion provider (chat) settings. These are the fallback when no
	// per-user row exists in the provider_settings table.
	ProviderName string
	LLMBaseURL   string
	LLMModelName string
	LLMAPIKey    string

	// Embedding provider settings.
	EmbeddingBaseURL   string
	EmbeddingModelName string

	// EmbeddingWidth is the fixed stored vector width. Every persisted
	// embedding has exactly this many dimensions.
	EmbeddingWidth int

	DBPath string

	QdrantURL        string
	QdrantCollection string

	// ExtractWorkers bounds concurrent extractions in a batch run.
	// 1 reproduces strictly sequential processing.
	ExtractWorkers int
	// ProviderRPS caps completion/embedding calls per second across a run.
	ProviderRPS float64

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded
// automatically. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up toward the project root (where go.mod lives) looking for a .env.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		ProviderName:       getEnv("LLM_PROVIDER", "openai-compatible"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		DBPath:             getEnv("DB_PATH", "./data/inboxpilot.db"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "mail"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// EMBEDDING_WIDTH is the stored vector width. Provider-native vectors are
	// normalized (truncated or zero-padded) to this width before persistence,
	// so the Qdrant collection must be created with the same size.
	width, err := getEnvInt("EMBEDDING_WIDTH", 768)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		return nil, fmt.Errorf("EMBEDDING_WIDTH must be greater than 0")
	}
	cfg.EmbeddingWidth = width

	workers, err := getEnvInt("EXTRACT_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		return nil, fmt.Errorf("EXTRACT_WORKERS must be greater than 0")
	}
	cfg.ExtractWorkers = workers

	rpsStr := getEnv("PROVIDER_RPS", "2")
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return nil, fmt.Errorf("PROVIDER_RPS must be a valid number: %w", err)
	}
	if rps <= 0 {
		return nil, fmt.Errorf("PROVIDER_RPS must be greater than 0")
	}
	cfg.ProviderRPS = rps

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// Create the data directory up front so the SQLite open doesn't fail.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", s)
	}
}

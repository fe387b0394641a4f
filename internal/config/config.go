package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Dialogue provider names accepted in DIALOGUE_PROVIDER.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderMock      = "mock"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	RedisURL string
	DataDir  string
	SavesDir string

	DialogueProvider string
	AnthropicAPIKey  string
	GeminiAPIKey     string
	ModelName        string
	DialogueTimeout  time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:         getEnv("REDIS_URL", "localhost:6379"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		SavesDir:         getEnv("SAVES_DIR", "./saves"),
		DialogueProvider: strings.ToLower(getEnv("DIALOGUE_PROVIDER", ProviderMock)),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		ModelName:        getEnv("MODEL_NAME", ""),
		DialogueTimeout:  parseSeconds(getEnv("DIALOGUE_TIMEOUT_SECONDS", "30")),
	}

	switch cfg.DialogueProvider {
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when DIALOGUE_PROVIDER=anthropic")
		}
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required when DIALOGUE_PROVIDER=gemini")
		}
	case ProviderMock:
	default:
		return nil, fmt.Errorf("invalid DIALOGUE_PROVIDER %q (supported: anthropic, gemini, mock)", cfg.DialogueProvider)
	}

	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseSeconds(s string) time.Duration {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 30 * time.Second
	}
	return time.Duration(n) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

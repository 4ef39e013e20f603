package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port            int
	LogLevel        string
	OpenAIAPIKey    string
	OpenAIModel     string
	RecentTurns     int
	ModelTimeoutSec int
	MaxFileMB       int
	MaxExtractChars int
	NatsURL         string
	NatsToken       string
	CORSOrigin      string
}

func Load() Config {
	return Config{
		Port:            envInt("MENTRA_PORT", 8080),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		OpenAIAPIKey:    envStr("OPENAI_API_KEY", ""),
		OpenAIModel:     envStr("MENTRA_MODEL", "gpt-4o-mini"),
		RecentTurns:     envInt("MENTRA_RECENT_TURNS", 12),
		ModelTimeoutSec: envInt("MENTRA_MODEL_TIMEOUT_SECONDS", 120),
		MaxFileMB:       envInt("MENTRA_MAX_FILE_MB", 15),
		MaxExtractChars: envInt("MENTRA_MAX_EXTRACT_CHARS", 15000),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		CORSOrigin:      envStr("CORS_ORIGIN", "http://localhost:5173,http://localhost:3000"),
	}
}

// CORSOrigins splits the comma-separated CORS_ORIGIN value into a clean list.
func (c Config) CORSOrigins() []string {
	parts := strings.Split(c.CORSOrigin, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

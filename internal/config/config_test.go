package config

import (
	"reflect"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Clear any env vars that might be set
	for _, key := range []string{
		"MENTRA_PORT", "LOG_LEVEL", "OPENAI_API_KEY", "MENTRA_MODEL",
		"MENTRA_RECENT_TURNS", "MENTRA_MODEL_TIMEOUT_SECONDS",
		"MENTRA_MAX_FILE_MB", "MENTRA_MAX_EXTRACT_CHARS",
		"NATS_URL", "NATS_TOKEN", "CORS_ORIGIN",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Errorf("expected default model, got %s", cfg.OpenAIModel)
	}
	if cfg.RecentTurns != 12 {
		t.Errorf("expected default recent turns 12, got %d", cfg.RecentTurns)
	}
	if cfg.ModelTimeoutSec != 120 {
		t.Errorf("expected default model timeout 120, got %d", cfg.ModelTimeoutSec)
	}
	if cfg.MaxFileMB != 15 {
		t.Errorf("expected default max file size 15, got %d", cfg.MaxFileMB)
	}
	if cfg.MaxExtractChars != 15000 {
		t.Errorf("expected default extract cap 15000, got %d", cfg.MaxExtractChars)
	}
	if cfg.NatsURL != "" {
		t.Errorf("expected empty default nats url, got %s", cfg.NatsURL)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("MENTRA_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OPENAI_API_KEY", "sk-test-key")
	t.Setenv("MENTRA_MODEL", "gpt-4.1")
	t.Setenv("MENTRA_RECENT_TURNS", "6")
	t.Setenv("NATS_URL", "nats://custom:4222")
	t.Setenv("NATS_TOKEN", "s3cr3t-token")

	cfg := Load()

	if cfg.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.OpenAIAPIKey != "sk-test-key" {
		t.Errorf("expected custom api key, got %s", cfg.OpenAIAPIKey)
	}
	if cfg.OpenAIModel != "gpt-4.1" {
		t.Errorf("expected custom model, got %s", cfg.OpenAIModel)
	}
	if cfg.RecentTurns != 6 {
		t.Errorf("expected recent turns 6, got %d", cfg.RecentTurns)
	}
	if cfg.NatsURL != "nats://custom:4222" {
		t.Errorf("expected custom nats url, got %s", cfg.NatsURL)
	}
	if cfg.NatsToken != "s3cr3t-token" {
		t.Errorf("expected custom nats token, got %s", cfg.NatsToken)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("MENTRA_PORT", "notanumber")

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("expected default port on invalid value, got %d", cfg.Port)
	}
}

func TestCORSOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGIN", "http://localhost:5173, https://app.example.com ,")

	got := Load().CORSOrigins()
	want := []string{"http://localhost:5173", "https://app.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected origins %v, got %v", want, got)
	}
}

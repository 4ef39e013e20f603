package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mentra-labs/mentra/internal/api"
	"github.com/mentra-labs/mentra/internal/chat"
	"github.com/mentra-labs/mentra/internal/config"
	"github.com/mentra-labs/mentra/internal/events"
	"github.com/mentra-labs/mentra/internal/extract"
	"github.com/mentra-labs/mentra/internal/openai"
	"github.com/mentra-labs/mentra/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("mentra starting", "port", cfg.Port)

	// OpenAI client
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required")
		os.Exit(1)
	}
	modelTimeout := time.Duration(cfg.ModelTimeoutSec) * time.Second
	llm := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, modelTimeout)
	slog.Info("openai client ready", "model", cfg.OpenAIModel)

	// In-memory session store — process lifetime only, a restart starts clean.
	st := store.New()

	// Extractor
	maxFileBytes := cfg.MaxFileMB << 20
	ext := extract.New(maxFileBytes, cfg.MaxExtractChars, slog.Default())

	// NATS activity events (optional — Mentra works without them, collaborators
	// like summarization/analytics just see nothing)
	var publisher *events.Publisher
	if cfg.NatsURL != "" {
		var err error
		publisher, err = events.Connect(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without activity events")
	}

	// Orchestrator — the conversation pipeline
	orch := chat.New(st, ext, llm, publisher, cfg.RecentTurns, modelTimeout, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, st, orch, publisher, cfg.CORSOrigins(), 4*int64(maxFileBytes), slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("mentra ready", "port", cfg.Port, "recent_turns", cfg.RecentTurns)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("mentra stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

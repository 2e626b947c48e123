package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agilehq/storyforge/internal/api"
	"github.com/agilehq/storyforge/internal/config"
	"github.com/agilehq/storyforge/internal/devops"
	"github.com/agilehq/storyforge/internal/events"
	"github.com/agilehq/storyforge/internal/extractor"
	"github.com/agilehq/storyforge/internal/openai"
	"github.com/agilehq/storyforge/internal/pipeline"
	"github.com/agilehq/storyforge/internal/publisher"
	"github.com/agilehq/storyforge/internal/store"
)

func main() {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("storyforge starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// OpenAI completion client. Extraction degrades to empty story lists
	// when unconfigured, so missing values are a warning, not fatal.
	if !cfg.OpenAIConfigured() {
		slog.Warn("Azure OpenAI not fully configured — extraction will return no stories")
	}
	llm := openai.NewClient(cfg.OpenAIEndpoint, cfg.OpenAIAPIKey, cfg.OpenAIDeployment)
	ext := extractor.New(llm, slog.Default())

	// Azure DevOps tracker (optional — publish requests fail with a
	// configuration error without it).
	tracker := devops.NewClient(cfg.DevOpsOrg, cfg.DevOpsProject, cfg.DevOpsPAT, slog.Default())
	if !tracker.Configured() {
		slog.Warn("Azure DevOps not configured — publishing disabled")
	}
	pub := publisher.New(tracker, slog.Default())

	// NATS lifecycle events (optional)
	var ev *events.Client
	if cfg.NatsURL != "" {
		ev, err = events.NewClient(cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer ev.Close()
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS not configured — running without lifecycle events")
	}

	// Pipeline — the transcript state machine
	pipe := pipeline.New(db, ext, pub, ev, slog.Default())

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, pipe, tracker.Configured())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	if err := ev.Publish("storyforge.service.started", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
	}); err != nil {
		slog.Warn("failed to publish startup event", "error", err)
	}

	slog.Info("storyforge ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("storyforge stopped")
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

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/MikeSquared-Agency/intake/internal/api"
	"github.com/MikeSquared-Agency/intake/internal/config"
	"github.com/MikeSquared-Agency/intake/internal/conversation"
	"github.com/MikeSquared-Agency/intake/internal/extractor"
	"github.com/MikeSquared-Agency/intake/internal/hermes"
	"github.com/MikeSquared-Agency/intake/internal/processor"
	"github.com/MikeSquared-Agency/intake/internal/session"
	"github.com/MikeSquared-Agency/intake/internal/store"
	"github.com/MikeSquared-Agency/intake/internal/workorder"
)

func main() {
	cfg := config.Load()
	cfg.RegisterFlags(pflag.CommandLine)
	pflag.Parse()
	setupLogging(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("intake starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database: customer directory and work order sink
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
	slog.Info("database connected")

	// Keyword tables
	keywords := extractor.DefaultKeywords()
	if cfg.KeywordsFile != "" {
		keywords, err = extractor.LoadKeywords(cfg.KeywordsFile)
		if err != nil {
			slog.Error("failed to load keywords", "path", cfg.KeywordsFile, "error", err)
			os.Exit(1)
		}
		slog.Info("keywords loaded", "path", cfg.KeywordsFile)
	}
	ext := extractor.New(keywords)

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Conversation engine
	sessions := session.NewStore(nil)
	machine := conversation.NewMachine(db, workorder.NewCommitter(db, slog.Default()), slog.Default(),
		conversation.WithDetailExtractor(ext),
		conversation.WithConfirmationClassifier(ext),
		conversation.WithResetOnReject(cfg.ResetOnReject),
	)
	engine := conversation.NewEngine(sessions, machine, hermesClient, slog.Default())

	// Idle session reaper
	reaper := session.NewReaper(sessions, cfg.SessionIdleTimeout, cfg.ReapInterval, engine.Evict, slog.Default())
	go reaper.Run(ctx)

	// Processor: transcription and telephony ingress
	proc := processor.New(engine, hermesClient, slog.Default())

	if err := hermesClient.Subscribe(hermes.SubjectUtterance, proc.HandleUtterance); err != nil {
		slog.Error("failed to subscribe to utterance events", "error", err)
		os.Exit(1)
	}
	if err := hermesClient.Subscribe(hermes.SubjectHangup, proc.HandleHangup); err != nil {
		slog.Error("failed to subscribe to hangup events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, engine)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish(hermes.SubjectRegistered, map[string]any{
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"port":         cfg.Port,
		"idle_timeout": cfg.SessionIdleTimeout.String(),
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("intake ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := hermesClient.Drain(shutdownCtx); err != nil {
		slog.Warn("failed to drain NATS subscriptions", "error", err)
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	cancel()
	slog.Info("intake stopped")
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

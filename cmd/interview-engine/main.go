package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/girishnp17/avaa-interview-engine/internal/ai/gemini"
	"github.com/girishnp17/avaa-interview-engine/internal/api"
	"github.com/girishnp17/avaa-interview-engine/internal/cleanup"
	"github.com/girishnp17/avaa-interview-engine/internal/config"
	"github.com/girishnp17/avaa-interview-engine/internal/evaluate"
	"github.com/girishnp17/avaa-interview-engine/internal/interview"
	"github.com/girishnp17/avaa-interview-engine/internal/planner"
	"github.com/girishnp17/avaa-interview-engine/internal/report"
	"github.com/girishnp17/avaa-interview-engine/internal/resume"
	"github.com/girishnp17/avaa-interview-engine/internal/session"
	"github.com/girishnp17/avaa-interview-engine/internal/speech"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load .env if present, then configuration from the environment
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting interview-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"total_questions", cfg.Interview.TotalQuestions,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Initialize the Gemini collaborator
	ai, err := gemini.NewClient(initCtx, gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		TextModel:   cfg.Gemini.TextModel,
		SpeechModel: cfg.Gemini.SpeechModel,
		VoiceName:   cfg.Gemini.VoiceName,
	})
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	// Load the question bank
	bank, err := planner.LoadBank(cfg.Interview.QuestionBankPath)
	if err != nil {
		slog.Error("failed to load question bank", "error", err, "path", cfg.Interview.QuestionBankPath)
		os.Exit(1)
	}

	// Wire the interview pipeline
	registry := session.NewRegistry(cfg.Interview.TotalQuestions)
	qplanner := planner.New(bank, ai, cfg.Interview.FixedQuestions)
	synthesis := speech.NewSynthesisPipeline(ai, cfg.Interview.SynthTimeout)
	transcription := speech.NewTranscriptionPipeline(registry, ai, cfg.Interview.TranscribeTimeout)
	parser := resume.NewParser(ai)
	evaluator := evaluate.New(ai)
	reports := report.NewStore(cfg.Reports.Dir)

	engine := interview.New(registry, qplanner, synthesis, transcription, parser, ai, evaluator, reports)

	// Initialize cleanup worker
	cleaner := cleanup.NewCleaner(engine, cfg.Cleanup.Interval, cfg.Interview.IdleTimeout)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start cleanup worker
	cleaner.Start(ctx)

	// Setup HTTP server. No read/write timeouts: the interview websocket is
	// long-lived.
	server := api.NewServer(cfg.Server, engine, transcription, registry, reports)
	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:     server.Router(),
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("interview-engine stopped")
}

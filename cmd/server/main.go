package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/enemsprint/sprint-backend/internal/config"
	"github.com/enemsprint/sprint-backend/internal/database"
	"github.com/enemsprint/sprint-backend/internal/handler"
	"github.com/enemsprint/sprint-backend/internal/history"
	"github.com/enemsprint/sprint-backend/internal/kv"
	"github.com/enemsprint/sprint-backend/internal/logger"
	"github.com/enemsprint/sprint-backend/internal/router"
	"github.com/enemsprint/sprint-backend/internal/service"
	"github.com/enemsprint/sprint-backend/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("history_backend", cfg.HistoryBackend).
		Msg("Starting Sprint Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Select Persistence Medium ─────────────────────────────────────
	medium, cleanup, err := buildMedium(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history persistence")
	}
	defer cleanup()

	// ─── Initialize Engine ─────────────────────────────────────────────
	historyStore := history.NewStore(medium, log)
	attemptService := service.NewAttemptService(historyStore, cfg.TickInterval, log)
	defer attemptService.Stop()

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Attempt: handler.NewAttemptHandler(attemptService, log),
		History: handler.NewHistoryHandler(historyStore, log),
		WS:      handler.NewWSHandler(attemptService, cfg.TickInterval, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// buildMedium constructs the configured kv backend. The returned cleanup
// closes any underlying connection.
func buildMedium(ctx context.Context, cfg *config.Config, log zerolog.Logger) (kv.Store, func(), error) {
	switch cfg.HistoryBackend {
	case config.HistoryBackendRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return kv.NewRedisStore(rdb), func() { rdb.Close() }, nil
	case config.HistoryBackendMemory:
		return kv.NewMemoryStore(), func() {}, nil
	default:
		store, err := kv.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

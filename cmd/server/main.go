package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/ianderson/ClerkBot/internal/adapters/http"
	"github.com/ianderson/ClerkBot/internal/app"
	"github.com/ianderson/ClerkBot/internal/assistant"
	"github.com/ianderson/ClerkBot/internal/config"
	"github.com/ianderson/ClerkBot/internal/core"
	"github.com/ianderson/ClerkBot/internal/live"
	"github.com/ianderson/ClerkBot/internal/seed"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	library := core.NewLibrary()
	if err := seed.Load(library); err != nil {
		log.Fatal().Err(err).Msg("failed to seed library")
	}

	user := seed.CurrentUser()
	sessions := live.NewRegistry()
	sched := app.StageSchedule{
		Transcribe: cfg.Transcribe,
		Summarize:  cfg.Summarize,
		Success:    cfg.Success,
	}
	flows := app.NewRegistry(library, user, sessions, app.WallClock(), sched, cfg.ConnectDelay)

	var gateway assistant.Assistant
	if key := cfg.AssistantAPIKey(); key != "" {
		gateway = assistant.NewGeminiClient(cfg.Assistant.BaseURL, key, cfg.Assistant.Model, cfg.Assistant.Timeout, log.Logger)
	} else {
		log.Warn().Str("env", cfg.Assistant.APIKeyEnv).Msg("no assistant API key, running with stub")
		gateway = assistant.Stub{}
	}

	deps := router.Deps{
		Library:   library,
		Flows:     flows,
		Sessions:  sessions,
		Assistant: gateway,
		User:      user,
		Folders:   cfg.Folders,
		Default:   cfg.DefaultFolder,
	}

	r := router.SetupRouter(ctx, cfg, deps)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("ClerkBot server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}

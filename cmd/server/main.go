package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/citizen-signals/backend/internal/ai"
	"github.com/citizen-signals/backend/internal/config"
	"github.com/citizen-signals/backend/internal/directory"
	httpapi "github.com/citizen-signals/backend/internal/http"
	"github.com/citizen-signals/backend/internal/media"
	"github.com/citizen-signals/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "signals-backend").Logger()

	dir, err := directory.LoadFile(cfg.OrgCSVPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.OrgCSVPath).Msg("failed to load organization directory")
	}
	idx := directory.NewIndex(dir)
	logger.Info().
		Int("organizations", dir.Len()).
		Int("cities", idx.CityCount()).
		Int("rayons", idx.RayonCount()).
		Msg("organization directory loaded")

	store, err := media.NewStore(cfg.StagingDir, cfg.UploadsDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init media store")
	}

	basePrompt := service.LoadPrompt(cfg.PromptPath)
	if basePrompt == "" {
		basePrompt = service.DefaultBasePrompt
		logger.Warn().Str("path", cfg.PromptPath).Msg("prompt file not found, using default")
	}

	var assistant ai.Assistant
	if cfg.AssistantBaseURL == "" {
		assistant = ai.MockAssistant{}
		logger.Info().Msg("using mock assistant")
	} else {
		assistant = ai.OpenAICompatAssistant{
			BaseURL:   cfg.AssistantBaseURL,
			Model:     cfg.AssistantModel,
			APIKey:    cfg.AssistantAPIKey,
			MaxTokens: cfg.AssistantMaxToken,
		}
	}

	router := httpapi.Router(cfg, dir, idx, assistant, store, basePrompt, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/app"
	"github.com/vasapolrittideah/notes-api/services/notes-service/internal/config"
	"github.com/vasapolrittideah/notes-api/shared/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logger.New(cfg.Log.Level, cfg.LogFormat())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start notes service")
	}

	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("notes service stopped with error")
		stop()
		os.Exit(1)
	}
}

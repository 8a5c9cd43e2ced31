package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"spamsniffer/internal/api"
	"spamsniffer/internal/config"
	"spamsniffer/internal/logger"
	"spamsniffer/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	deps, err := service.Build(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}
	defer deps.Close()

	sse := api.NewSSEBroker()
	server := api.NewServer(deps.Scanner(sse), deps.Repo, deps.Pipeline.Info(), sse, api.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	go func() {
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

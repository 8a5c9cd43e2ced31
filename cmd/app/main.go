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
	"spamsniffer/internal/queue"
	"spamsniffer/internal/service"
	"spamsniffer/internal/worker"
)

// app runs the HTTP API and, when brokers are configured, the queue worker
// in one process so queued scans show up on the live feed.
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
	sc := deps.Scanner(sse)
	server := api.NewServer(sc, deps.Repo, deps.Pipeline.Info(), sse, api.Options{
		AllowOrigins: cfg.Server.AllowOrigins,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(cfg.Queue.Brokers) > 0 {
		consumer, err := queue.NewKafkaConsumer(cfg.Queue.Brokers, cfg.Queue.GroupID, cfg.Queue.Topic)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create consumer")
		}
		defer consumer.Close()

		publisher, err := service.NewPublisher(cfg.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create publisher")
		}
		if publisher != nil {
			defer publisher.Close()
		}

		w := worker.NewConsumer(consumer, sc, publisher)
		go func() {
			if err := w.Start(ctx); err != nil {
				log.Error().Err(err).Msg("consumer error")
			}
		}()
	}

	go func() {
		if err := server.Start(cfg.Server.Port); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()

	log.Info().Msg("app started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

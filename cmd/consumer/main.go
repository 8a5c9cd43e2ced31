package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"spamsniffer/internal/config"
	"spamsniffer/internal/logger"
	"spamsniffer/internal/queue"
	"spamsniffer/internal/service"
	"spamsniffer/internal/worker"
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

	w := worker.NewConsumer(consumer, deps.Scanner(nil), publisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error().Err(err).Msg("consumer error")
		}
	}()

	log.Info().Str("topic", cfg.Queue.Topic).Msg("consumer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()
}

// Package service assembles the long-running processes from configuration.
package service

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"spamsniffer/internal/artifact"
	"spamsniffer/internal/config"
	"spamsniffer/internal/notifier"
	"spamsniffer/internal/pipeline"
	"spamsniffer/internal/queue"
	"spamsniffer/internal/redis"
	"spamsniffer/internal/scanner"
	"spamsniffer/internal/storage"
)

// Deps are the shared collaborators of the server and the queue worker.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Repo     *storage.SQLStore
	Cache    *redis.Client
	Notifier notifier.Notifier

	closers []func() error
}

// Build loads the model artifact and opens storage, plus the verdict cache
// and Telegram notifier when configured. A bad artifact is fatal.
func Build(cfg *config.Config) (*Deps, error) {
	a, err := artifact.Load(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}

	p, err := pipeline.New(a, pipeline.Options{SummarySentences: cfg.Summary.Sentences})
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	info := p.Info()
	log.Info().
		Str("path", cfg.Model.Path).
		Int("features", info.Features).
		Str("norm", info.Norm).
		Time("created_at", info.CreatedAt).
		Msg("model loaded")

	d := &Deps{Pipeline: p, Notifier: notifier.Noop{}}

	repo, err := storage.NewSQLStore(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	d.Repo = repo
	d.closers = append(d.closers, repo.Close)

	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(cfg.Redis.Addr, cfg.Redis.TTL, info.Version())
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		d.Cache = rdb
		d.closers = append(d.closers, rdb.Close)
	}

	if cfg.Notifier.TelegramToken != "" && len(cfg.Notifier.TelegramChatIDs) > 0 {
		d.Notifier = notifier.NewTelegram(cfg.Notifier.TelegramToken, cfg.Notifier.TelegramChatIDs)
	}

	return d, nil
}

// Scanner wires the deps into a scanner that broadcasts to b, if non-nil.
func (d *Deps) Scanner(b scanner.Broadcaster) *scanner.Scanner {
	opts := []scanner.Option{
		scanner.WithRepository(d.Repo),
		scanner.WithNotifier(d.Notifier),
	}
	if d.Cache != nil {
		opts = append(opts, scanner.WithCache(d.Cache))
	}
	if b != nil {
		opts = append(opts, scanner.WithBroadcaster(b))
	}
	return scanner.New(d.Pipeline, opts...)
}

// NewPublisher opens the producer for queue.result_topic. It returns a nil
// publisher when no result topic is configured.
func NewPublisher(cfg config.QueueConfig) (queue.Publisher, error) {
	if cfg.ResultTopic == "" {
		return nil, nil
	}

	k, err := queue.NewKafka(cfg.Brokers, cfg.ResultTopic)
	if err != nil {
		return nil, fmt.Errorf("creating publisher: %w", err)
	}
	return k, nil
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn().Err(err).Msg("closing dependency")
		}
	}
}

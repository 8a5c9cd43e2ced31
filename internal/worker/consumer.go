package worker

import (
	"context"

	"github.com/rs/zerolog/log"

	"spamsniffer/internal/domain"
	"spamsniffer/internal/queue"
	"spamsniffer/internal/scanner"
)

type Scanner interface {
	Scan(ctx context.Context, req scanner.Request) (*domain.Scan, error)
}

// Consumer scans emails arriving on the queue and publishes each verdict.
type Consumer struct {
	consumer  queue.Consumer
	scanner   Scanner
	publisher queue.Publisher
}

// NewConsumer builds a worker; a nil publisher only records scans.
func NewConsumer(c queue.Consumer, s Scanner, p queue.Publisher) *Consumer {
	return &Consumer{
		consumer:  c,
		scanner:   s,
		publisher: p,
	}
}

func (w *Consumer) Start(ctx context.Context) error {
	return w.consumer.Consume(ctx, func(email domain.Email) error {
		return w.handleEmail(ctx, email)
	})
}

func (w *Consumer) handleEmail(ctx context.Context, email domain.Email) error {
	log.Debug().Str("email_id", email.ID).Str("subject", truncate(email.Subject, 60)).Msg("received email")

	scan, err := w.scanner.Scan(ctx, scanner.Request{
		Source:  domain.SourceQueue,
		EmailID: email.ID,
		Subject: email.Subject,
		From:    email.From,
		Text:    email.Text,
	})
	if err != nil {
		log.Error().Err(err).Str("email_id", email.ID).Msg("scan failed")
		return err
	}

	if w.publisher != nil {
		if err := w.publisher.Publish(ctx, *scan); err != nil {
			log.Error().Err(err).Str("scan_id", scan.ID).Msg("publish failed")
			return err
		}
	}

	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

package queue

import (
	"context"

	"spamsniffer/internal/domain"
)

// Publisher sends finished scans downstream.
type Publisher interface {
	Publish(ctx context.Context, scan domain.Scan) error
	Close() error
}

// Consumer delivers inbound emails to handler until ctx is cancelled.
type Consumer interface {
	Consume(ctx context.Context, handler func(email domain.Email) error) error
	Close() error
}

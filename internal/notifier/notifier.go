package notifier

import (
	"context"

	"spamsniffer/internal/domain"
)

type Notification struct {
	Scan domain.Scan
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Noop drops every notification; used when no channel is configured.
type Noop struct{}

func (Noop) Notify(context.Context, Notification) error { return nil }

package storage

import (
	"context"
	"errors"

	"spamsniffer/internal/domain"
)

var ErrNotFound = errors.New("storage: scan not found")

type Stats struct {
	Total int `json:"total" db:"total"`
	Spam  int `json:"spam" db:"spam"`
}

type ScanRepository interface {
	Save(ctx context.Context, scan domain.Scan) error
	FindByID(ctx context.Context, id string) (*domain.Scan, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Scan, error)
	GetStats(ctx context.Context) (Stats, error)
	Close() error
}

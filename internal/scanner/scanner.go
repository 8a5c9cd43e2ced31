// Package scanner runs one text through the pipeline and fans the result
// out to the cache, scan history, live feed and notifier.
package scanner

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"spamsniffer/internal/domain"
	"spamsniffer/internal/notifier"
	"spamsniffer/internal/redis"
	"spamsniffer/internal/storage"
)

type Checker interface {
	Check(text string) (*domain.Verdict, error)
}

type VerdictCache interface {
	GetVerdict(ctx context.Context, hash string) (*domain.Verdict, error)
	SetVerdict(ctx context.Context, hash string, v *domain.Verdict) error
}

type Broadcaster interface {
	Broadcast(msg string)
}

type Request struct {
	Source  domain.Source
	EmailID string
	Subject string
	From    string
	Text    string
}

// Scanner is safe for concurrent use. Every collaborator except the checker
// is optional; failures in them are logged and never fail a scan.
type Scanner struct {
	checker     Checker
	cache       VerdictCache
	repo        storage.ScanRepository
	broadcaster Broadcaster
	notifier    notifier.Notifier
}

type Option func(*Scanner)

func WithCache(c VerdictCache) Option { return func(s *Scanner) { s.cache = c } }

func WithRepository(r storage.ScanRepository) Option { return func(s *Scanner) { s.repo = r } }

func WithBroadcaster(b Broadcaster) Option { return func(s *Scanner) { s.broadcaster = b } }

func WithNotifier(n notifier.Notifier) Option { return func(s *Scanner) { s.notifier = n } }

func New(checker Checker, opts ...Option) *Scanner {
	s := &Scanner{checker: checker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scanner) verdict(ctx context.Context, hash, text string) (*domain.Verdict, error) {
	if s.cache != nil {
		v, err := s.cache.GetVerdict(ctx, hash)
		if err != nil {
			log.Warn().Err(err).Str("hash", hash).Msg("verdict cache read failed")
		} else if v != nil {
			return v, nil
		}
	}

	v, err := s.checker.Check(text)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetVerdict(ctx, hash, v); err != nil {
			log.Warn().Err(err).Str("hash", hash).Msg("verdict cache write failed")
		}
	}

	return v, nil
}

// Scan checks req.Text and records the result.
func (s *Scanner) Scan(ctx context.Context, req Request) (*domain.Scan, error) {
	hash := redis.HashText(req.Text)

	v, err := s.verdict(ctx, hash, req.Text)
	if err != nil {
		return nil, err
	}

	scan := &domain.Scan{
		ID:        uuid.New().String(),
		Source:    req.Source,
		EmailID:   req.EmailID,
		Subject:   req.Subject,
		From:      req.From,
		TextHash:  hash,
		Verdict:   *v,
		CreatedAt: time.Now().UTC(),
	}

	log.Info().
		Str("scan_id", scan.ID).
		Str("source", string(scan.Source)).
		Bool("is_spam", v.IsSpam).
		Float64("spam_score", v.SpamScore).
		Msg("scanned")

	if s.repo != nil {
		if err := s.repo.Save(ctx, *scan); err != nil {
			log.Error().Err(err).Str("scan_id", scan.ID).Msg("saving scan failed")
		}
	}

	if s.broadcaster != nil {
		if data, err := json.Marshal(scan); err == nil {
			s.broadcaster.Broadcast(string(data))
		}
	}

	if v.IsSpam && s.notifier != nil {
		if err := s.notifier.Notify(ctx, notifier.Notification{Scan: *scan}); err != nil {
			log.Error().Err(err).Str("scan_id", scan.ID).Msg("notify failed")
		}
	}

	return scan, nil
}

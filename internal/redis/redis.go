package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"spamsniffer/internal/domain"
)

const verdictPrefix = "verdict:"

// Client caches verdicts by text hash. Scoring is deterministic for a
// loaded model, so a cached verdict stays valid until the model changes;
// the model version is part of the key.
type Client struct {
	rdb   *redis.Client
	ttl   time.Duration
	model string
}

func New(addr string, ttl time.Duration, modelVersion string) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewWithClient(rdb, ttl, modelVersion), nil
}

// NewWithClient wraps an existing connection.
func NewWithClient(rdb *redis.Client, ttl time.Duration, modelVersion string) *Client {
	return &Client{rdb: rdb, ttl: ttl, model: modelVersion}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// HashText is the cache and storage key of a text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (c *Client) key(hash string) string {
	return verdictPrefix + c.model + ":" + hash
}

// GetVerdict returns the cached verdict for hash, or nil on a miss.
func (c *Client) GetVerdict(ctx context.Context, hash string) (*domain.Verdict, error) {
	data, err := c.rdb.Get(ctx, c.key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var v domain.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *Client) SetVerdict(ctx context.Context, hash string, v *domain.Verdict) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(hash), data, c.ttl).Err()
}

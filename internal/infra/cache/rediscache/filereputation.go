package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/bryanwahyu/cyber-assistant/internal/domain/analysis"
)

const keyPrefix = "cyberassist:filerep:"

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx2).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// FileReputationCache keeps successful file reports keyed by content hash.
// Only Success results are cached; cache errors fall through to the wrapped adapter.
type FileReputationCache struct {
	inner  domain.FileReputation
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewFileReputationCache(inner domain.FileReputation, client *redis.Client, ttl time.Duration, logger *slog.Logger) *FileReputationCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileReputationCache{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *FileReputationCache) LookupHash(ctx context.Context, sha256 string) domain.UpstreamResult {
	key := keyPrefix + sha256

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var report map[string]any
		if jerr := json.Unmarshal(data, &report); jerr == nil {
			return domain.Success(report)
		}
		c.logger.Warn("discarding unreadable cached report", slog.String("hash", sha256))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("file reputation cache read failed", slog.String("hash", sha256), slog.String("error", err.Error()))
	}

	res := c.inner.LookupHash(ctx, sha256)
	if !res.OK() {
		return res
	}
	b, err := json.Marshal(res.Payload)
	if err != nil {
		return res
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		c.logger.Warn("file reputation cache write failed", slog.String("hash", sha256), slog.String("error", err.Error()))
	}
	return res
}

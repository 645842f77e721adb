package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	logpkg "github.com/benvon/begone/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// KeyPrefix namespaces range lists in Redis
	KeyPrefix = "begone:ranges:"
	// DefaultTTL is how long a fetched range list stays valid
	DefaultTTL = 24 * time.Hour
)

// RangeFetcher fetches the patterns assigned to a registry mnemonic
type RangeFetcher interface {
	FetchRanges(ctx context.Context, mnemonic string) ([]string, error)
}

// Scope digests the identity of the dataset a range list was fetched from
func Scope(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:8])
}

// RedisRangeCache stores fetched range patterns in Redis under
// KeyPrefix + scope + ":" + mnemonic
type RedisRangeCache struct {
	client *redis.Client
	scope  string
	ttl    time.Duration
}

// NewRedisRangeCache connects to Redis and verifies the connection
func NewRedisRangeCache(redisURL, scope string, ttl time.Duration) (*RedisRangeCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisRangeCache{client: client, scope: scope, ttl: ttl}, nil
}

// Key returns the Redis key holding the patterns of a mnemonic
func (c *RedisRangeCache) Key(mnemonic string) string {
	return KeyPrefix + c.scope + ":" + mnemonic
}

// Close closes the Redis connection
func (c *RedisRangeCache) Close() error {
	return c.client.Close()
}

// Get returns the cached patterns for a mnemonic. ok is false on a miss.
func (c *RedisRangeCache) Get(ctx context.Context, mnemonic string) (patterns []string, ok bool, err error) {
	data, err := c.client.Get(ctx, c.Key(mnemonic)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached ranges: %w", err)
	}
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, false, fmt.Errorf("decode cached ranges: %w", err)
	}
	return patterns, true, nil
}

// Set stores the patterns for a mnemonic with the cache TTL
func (c *RedisRangeCache) Set(ctx context.Context, mnemonic string, patterns []string) error {
	if patterns == nil {
		patterns = []string{}
	}
	data, err := json.Marshal(patterns)
	if err != nil {
		return fmt.Errorf("encode ranges: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(mnemonic), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached ranges: %w", err)
	}
	return nil
}

// Fetcher serves range lookups from the cache and falls back to the wrapped
// fetcher on a miss. Cache failures are logged and never abort a lookup.
type Fetcher struct {
	next   RangeFetcher
	store  *RedisRangeCache
	logger *zap.Logger
}

// NewFetcher wraps next with store
func NewFetcher(next RangeFetcher, store *RedisRangeCache, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{next: next, store: store, logger: logger}
}

// FetchRanges implements RangeFetcher
func (f *Fetcher) FetchRanges(ctx context.Context, mnemonic string) ([]string, error) {
	patterns, ok, err := f.store.Get(ctx, mnemonic)
	switch {
	case err != nil:
		f.logger.Warn("range_cache_read_failed",
			zap.String("mnemonic", logpkg.SanitizeString(mnemonic, 0)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	case ok:
		f.logger.Debug("range_cache_hit",
			zap.String("mnemonic", logpkg.SanitizeString(mnemonic, 0)),
			zap.Int("patterns", len(patterns)),
		)
		return patterns, nil
	}

	patterns, err = f.next.FetchRanges(ctx, mnemonic)
	if err != nil {
		return nil, err
	}

	if err := f.store.Set(ctx, mnemonic, patterns); err != nil {
		f.logger.Warn("range_cache_write_failed",
			zap.String("mnemonic", logpkg.SanitizeString(mnemonic, 0)),
			zap.String("error", logpkg.SanitizeError(err)),
		)
	}
	return patterns, nil
}

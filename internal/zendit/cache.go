package zendit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
)

const roamingKeyPrefix = "zendit:esim:roaming:"

// Cache stores roaming lookups between runs.
type Cache interface {
	Get(ctx context.Context, key string) ([]string, bool, error)
	Set(ctx context.Context, key string, codes []string, ttl time.Duration) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb *redis.Client
}

// NewRedisClient parses redisURL, connects and pings.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisCache wraps a connected client.
func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var codes []string
	if err := json.Unmarshal(raw, &codes); err != nil {
		return nil, false, fmt.Errorf("decode cached roaming %s: %w", key, err)
	}
	return codes, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, codes []string, ttl time.Duration) error {
	raw, err := json.Marshal(codes)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

// CachedLookup serves roaming lookups from a cache and fills it from the
// wrapped lookup. Cache failures are logged and bypassed. Empty results are
// cached too, so offers without data are not re-requested until the TTL ends.
type CachedLookup struct {
	next  core.RoamingLookup
	cache Cache
	ttl   time.Duration
}

// NewCachedLookup wraps next with cache.
func NewCachedLookup(next core.RoamingLookup, cache Cache, ttl time.Duration) *CachedLookup {
	return &CachedLookup{next: next, cache: cache, ttl: ttl}
}

func (l *CachedLookup) RoamingCountries(ctx context.Context, offerID string) ([]string, error) {
	logger := logging.WithFields(ctx, "offer_id", offerID)
	key := roamingKeyPrefix + offerID

	codes, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("roaming cache read failed", "error", err)
	} else if ok {
		logger.Debug("roaming cache hit", "count", len(codes))
		return codes, nil
	}

	codes, err = l.next.RoamingCountries(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if codes == nil {
		codes = []string{}
	}
	if err := l.cache.Set(ctx, key, codes, l.ttl); err != nil {
		logger.Warn("roaming cache write failed", "error", err)
	}
	return codes, nil
}

package app

import (
	"context"

	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/core"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/logging"
	"github.com/Nikolay-Tymoshchuk/zendit-to-csv/internal/zendit"
)

// Roaming builds the roaming lookup for regional CSV rows. Without an API
// key it returns nil and regional rows fall back to their own country. When
// REDIS_URL is set the lookup is cached; an unreachable Redis is logged and
// the lookup runs uncached. The returned cleanup is never nil.
func (e *Env) Roaming(ctx context.Context) (core.RoamingLookup, func()) {
	logger := logging.FromContext(ctx)
	zc := e.Config.Zendit

	if zc.APIKey == "" {
		logger.Error("ZENDIT_API_KEY not set, regional offers fall back to their own country")
		return nil, func() {}
	}

	var lookup core.RoamingLookup = zendit.NewRoamingClient(zc.APIURL, zc.APIKey, zc.LookupDelay, zc.Timeout)

	if e.Config.Cache.RedisURL == "" {
		return lookup, func() {}
	}

	rdb, err := zendit.NewRedisClient(ctx, e.Config.Cache.RedisURL)
	if err != nil {
		logger.Warn("roaming cache unavailable, continuing without it", "error", err)
		return lookup, func() {}
	}
	logger.Info("roaming cache enabled", "ttl", e.Config.Cache.RoamingTTL)

	cached := zendit.NewCachedLookup(lookup, zendit.NewRedisCache(rdb), e.Config.Cache.RoamingTTL)
	return cached, func() { rdb.Close() }
}

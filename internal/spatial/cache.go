package spatial

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores serialized discovery results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache implements Cache on a Redis (or Valkey) server.
type RedisCache struct {
	client redis.Cmdable
}

// NewRedisCache wraps a go-redis client.
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

// Get returns the cached value or ErrCacheMiss.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	return value, nil
}

// Set stores value under key for ttl.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rc.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	return nil
}

// CachedProvider serves repeated lookups from a Cache. Degraded resolutions are
// never stored, and cache failures fall through to the wrapped provider.
type CachedProvider struct {
	next    Provider
	cache   Cache
	ttl     time.Duration
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewCachedProvider decorates next with cache.
func NewCachedProvider(
	next Provider,
	cache Cache,
	ttl time.Duration,
	log *slog.Logger,
	metrics *metrics.Metrics,
) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, ttl: ttl, log: log, metrics: metrics}
}

// NearbyBuildings implements Provider.
func (cp *CachedProvider) NearbyBuildings(
	ctx context.Context,
	center models.Coordinates,
	radiusMeters float64,
	limit int,
) Resolution {
	key := CacheKey(center, radiusMeters, limit)

	cached, err := cp.cache.Get(ctx, key)
	switch {
	case err == nil:
		var buildings []models.DiscoveredBuilding
		if err = json.Unmarshal(cached, &buildings); err == nil {
			cp.metrics.CacheLookups.WithLabelValues("hit").Inc()
			return Resolution{Buildings: buildings, Strategy: StrategyCache}
		}
		cp.log.WarnContext(ctx, "Discarding undecodable cache entry", "key", key, "error", err)
		cp.metrics.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, ErrCacheMiss):
		cp.metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		cp.log.WarnContext(ctx, "Discovery cache unavailable", "key", key, "error", err)
		cp.metrics.CacheLookups.WithLabelValues("error").Inc()
	}

	resolution := cp.next.NearbyBuildings(ctx, center, radiusMeters, limit)
	if resolution.Strategy == StrategyDegraded {
		return resolution
	}

	payload, err := json.Marshal(resolution.Buildings)
	if err != nil {
		cp.log.ErrorContext(ctx, "Failed to encode discovery result", "error", err)
		return resolution
	}
	if err = cp.cache.Set(ctx, key, payload, cp.ttl); err != nil {
		cp.log.WarnContext(ctx, "Failed to store discovery result", "key", key, "error", err)
	}

	return resolution
}

// CacheKey identifies a lookup. Coordinates are already rounded to 6 decimals;
// the radius is kept at full precision so distinct radii never share an entry.
func CacheKey(center models.Coordinates, radiusMeters float64, limit int) string {
	return fmt.Sprintf("perimeter:nearby:%.6f:%.6f:%s:%d",
		center.Latitude(), center.Longitude(), strconv.FormatFloat(radiusMeters, 'f', -1, 64), limit)
}

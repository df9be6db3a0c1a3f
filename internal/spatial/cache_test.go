package spatial_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/UnknownOlympus/perimeter/internal/spatial"
	"github.com/UnknownOlympus/perimeter/test/mocks"
	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-memory Cache for tests.
type memoryCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.items[key]
	if !ok {
		return nil, spatial.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.items[key] = value
	c.ttls[key] = ttl
	return nil
}

func discovered(id string) models.DiscoveredBuilding {
	return models.DiscoveredBuilding{
		ID:                 "way/" + id,
		Name:               "Building " + id,
		Coordinates:        models.MustCoordinates(1, 1),
		SearchRadiusMeters: 120,
		Metadata:           map[string]string{"building": "yes"},
	}
}

func TestCachedProvider(t *testing.T) {
	t.Parallel()

	center := models.MustCoordinates(1, 1)
	logger := slog.New(slog.DiscardHandler)

	t.Run("miss then hit", func(t *testing.T) {
		next := mocks.NewProvider(t)
		next.On("NearbyBuildings", mock.Anything, center, 120.0, 50).Return(spatial.Resolution{
			Buildings: []models.DiscoveredBuilding{discovered("1")},
			Strategy:  spatial.StrategyPrimary,
		}).Once()

		cache := newMemoryCache()
		m := metrics.NewMetrics(prometheus.NewRegistry())
		provider := spatial.NewCachedProvider(next, cache, time.Minute, logger, m)

		first := provider.NearbyBuildings(t.Context(), center, 120, 50)
		assert.Equal(t, spatial.StrategyPrimary, first.Strategy)

		second := provider.NearbyBuildings(t.Context(), center, 120, 50)
		assert.Equal(t, spatial.StrategyCache, second.Strategy)
		require.Len(t, second.Buildings, 1)
		assert.Equal(t, first.Buildings[0].ID, second.Buildings[0].ID)
		assert.Equal(t, first.Buildings[0].Coordinates, second.Buildings[0].Coordinates)

		assert.Equal(t, time.Minute, cache.ttls[spatial.CacheKey(center, 120, 50)])
		assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), 0)
	})

	t.Run("degraded results are not cached", func(t *testing.T) {
		next := mocks.NewProvider(t)
		next.On("NearbyBuildings", mock.Anything, center, 120.0, 50).Return(spatial.Resolution{
			Buildings: []models.DiscoveredBuilding{},
			Strategy:  spatial.StrategyDegraded,
		}).Twice()

		cache := newMemoryCache()
		provider := spatial.NewCachedProvider(next, cache, time.Minute, logger,
			metrics.NewMetrics(prometheus.NewRegistry()))

		for range 2 {
			resolution := provider.NearbyBuildings(t.Context(), center, 120, 50)
			assert.Equal(t, spatial.StrategyDegraded, resolution.Strategy)
		}
		assert.Empty(t, cache.items)
	})

	t.Run("cache failures fall through", func(t *testing.T) {
		next := mocks.NewProvider(t)
		next.On("NearbyBuildings", mock.Anything, center, 120.0, 50).Return(spatial.Resolution{
			Buildings: []models.DiscoveredBuilding{discovered("1")},
			Strategy:  spatial.StrategyFallback,
		}).Once()

		cache := newMemoryCache()
		cache.getErr = assert.AnError
		cache.setErr = assert.AnError
		m := metrics.NewMetrics(prometheus.NewRegistry())
		provider := spatial.NewCachedProvider(next, cache, time.Minute, logger, m)

		resolution := provider.NearbyBuildings(t.Context(), center, 120, 50)

		assert.Equal(t, spatial.StrategyFallback, resolution.Strategy)
		assert.Len(t, resolution.Buildings, 1)
		assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("error")), 0)
	})

	t.Run("undecodable entry is replaced", func(t *testing.T) {
		next := mocks.NewProvider(t)
		next.On("NearbyBuildings", mock.Anything, center, 120.0, 50).Return(spatial.Resolution{
			Buildings: []models.DiscoveredBuilding{discovered("2")},
			Strategy:  spatial.StrategyPrimary,
		}).Once()

		cache := newMemoryCache()
		key := spatial.CacheKey(center, 120, 50)
		cache.items[key] = []byte("not json")
		provider := spatial.NewCachedProvider(next, cache, time.Minute, logger,
			metrics.NewMetrics(prometheus.NewRegistry()))

		resolution := provider.NearbyBuildings(t.Context(), center, 120, 50)
		assert.Equal(t, spatial.StrategyPrimary, resolution.Strategy)

		var stored []models.DiscoveredBuilding
		require.NoError(t, json.Unmarshal(cache.items[key], &stored))
		assert.Equal(t, "way/2", stored[0].ID)
	})
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	center := models.MustCoordinates(40.7128, -74.006)

	assert.Equal(t, "perimeter:nearby:40.712800:-74.006000:120:50", spatial.CacheKey(center, 120, 50))
	assert.Equal(t, "perimeter:nearby:40.712800:-74.006000:120.012:50", spatial.CacheKey(center, 120.012, 50))
	assert.NotEqual(t, spatial.CacheKey(center, 120.012, 50), spatial.CacheKey(center, 120.048, 50),
		"radii that differ below one decimal must not share an entry")
}

func TestRedisCache_Unavailable(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	cache := spatial.NewRedisCache(client)

	_, err := cache.Get(t.Context(), "perimeter:test")
	require.Error(t, err)
	require.NotErrorIs(t, err, spatial.ErrCacheMiss)

	err = cache.Set(t.Context(), "perimeter:test", []byte("{}"), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write cache key")
}

func TestRedisCache_RoundTrip(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := spatial.NewRedisCache(client)

	t.Run("missing key is a cache miss", func(t *testing.T) {
		_, err := cache.Get(t.Context(), "perimeter:absent")

		require.ErrorIs(t, err, spatial.ErrCacheMiss)
	})

	t.Run("stored value is returned until it expires", func(t *testing.T) {
		require.NoError(t, cache.Set(t.Context(), "perimeter:stored", []byte(`[{"id":"way/1"}]`), time.Minute))

		value, err := cache.Get(t.Context(), "perimeter:stored")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"id":"way/1"}]`, string(value))
		assert.Equal(t, time.Minute, server.TTL("perimeter:stored"))

		server.FastForward(2 * time.Minute)

		_, err = cache.Get(t.Context(), "perimeter:stored")
		require.ErrorIs(t, err, spatial.ErrCacheMiss)
	})
}

func TestCachedProvider_WithRedis(t *testing.T) {
	t.Parallel()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	center := models.MustCoordinates(40.7128, -74.006)
	next := mocks.NewProvider(t)
	next.On("NearbyBuildings", mock.Anything, center, 120.0, 50).Return(spatial.Resolution{
		Buildings: []models.DiscoveredBuilding{discovered("1")},
		Strategy:  spatial.StrategyPrimary,
	}).Once()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	provider := spatial.NewCachedProvider(next, spatial.NewRedisCache(client), time.Minute,
		slog.New(slog.DiscardHandler), m)

	first := provider.NearbyBuildings(t.Context(), center, 120, 50)
	second := provider.NearbyBuildings(t.Context(), center, 120, 50)

	assert.Equal(t, spatial.StrategyPrimary, first.Strategy)
	assert.Equal(t, spatial.StrategyCache, second.Strategy)
	require.Len(t, second.Buildings, 1)
	assert.Equal(t, "way/1", second.Buildings[0].ID)
	assert.True(t, server.Exists(spatial.CacheKey(center, 120, 50)))
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")), 0)
}

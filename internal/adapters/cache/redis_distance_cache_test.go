package cache

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/ports"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	depot = domain.Coordinates{Lat: 40.656361, Lon: 15.880113}
	potA  = domain.Coordinates{Lat: 40.64, Lon: 15.80}
	potB  = domain.Coordinates{Lat: 40.70, Lon: 15.95}
)

func newTestRedisCache(t *testing.T, ttl time.Duration) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisDistanceCacheFromClient(rdb, ttl), mr
}

func TestRedisDistanceCacheRoundTrip(t *testing.T) {
	c, _ := newTestRedisCache(t, time.Hour)
	ctx := context.Background()

	err := c.PutMany(ctx, depot, map[domain.Coordinates]ports.DistanceResult{
		potA: {DistanceKm: 6.82},
	})
	require.NoError(t, err)

	got, err := c.GetMany(ctx, depot, []domain.Coordinates{potA, potB, potA})
	require.NoError(t, err)

	assert.Len(t, got, 1)
	assert.InDelta(t, 6.82, got[potA].DistanceKm, 1e-9)
	_, hit := got[potB]
	assert.False(t, hit)
}

func TestRedisDistanceCacheIsPerOrigin(t *testing.T) {
	c, _ := newTestRedisCache(t, 0)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, depot, map[domain.Coordinates]ports.DistanceResult{potB: {DistanceKm: 7}}))

	got, err := c.GetMany(ctx, potA, []domain.Coordinates{potB})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisDistanceCacheExpires(t *testing.T) {
	c, mr := newTestRedisCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.PutMany(ctx, depot, map[domain.Coordinates]ports.DistanceResult{potA: {DistanceKm: 1}}))
	mr.FastForward(2 * time.Minute)

	got, err := c.GetMany(ctx, depot, []domain.Coordinates{potA})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisDistanceCacheSkipsCorruptValues(t *testing.T) {
	c, mr := newTestRedisCache(t, 0)
	mr.HSet(redisKeyPrefix+depot.Key(), potA.Key(), "not-a-number")

	got, err := c.GetMany(context.Background(), depot, []domain.Coordinates{potA})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisDistanceCacheServerDown(t *testing.T) {
	c, mr := newTestRedisCache(t, 0)
	mr.Close()

	_, err := c.GetMany(context.Background(), depot, []domain.Coordinates{potA})
	assert.Error(t, err)
}

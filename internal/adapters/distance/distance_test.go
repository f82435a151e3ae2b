package distance

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/ports"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	matera  = domain.Coordinates{Lat: 40.666, Lon: 16.604}
	altamur = domain.Coordinates{Lat: 40.827, Lon: 16.553}
	gravina = domain.Coordinates{Lat: 40.818, Lon: 16.418}
)

var (
	_ ports.DistanceMatrixProvider = (*GeodesicProvider)(nil)
	_ ports.DistanceMatrixProvider = (*CachingProvider)(nil)
	_ ports.DistanceMatrixProvider = (*ORSClient)(nil)
	_ ports.Geocoder               = (*ORSClient)(nil)
	_ ports.DistanceProvider       = (*MockDistanceProvider)(nil)
)

func TestGeodesicProvider(t *testing.T) {
	p := NewGeodesicProvider()
	ctx := context.Background()

	single, err := p.GetDistance(ctx, matera, altamur)
	require.NoError(t, err)
	assert.InDelta(t, matera.DistanceKm(altamur), single.DistanceKm, 1e-9)

	row, err := p.GetDistances(ctx, matera, []domain.Coordinates{altamur, gravina, matera})
	require.NoError(t, err)
	require.Len(t, row, 3)
	assert.Equal(t, single, row[0])
	assert.Zero(t, row[2].DistanceKm)
}

func TestGeodesicProviderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGeodesicProvider().GetDistance(ctx, matera, altamur)
	assert.ErrorIs(t, err, context.Canceled)
}

// memCache is an in-memory ports.DistanceCache.
type memCache struct {
	mu      sync.Mutex
	m       map[[2]domain.Coordinates]ports.DistanceResult
	getErr  error
	putErr  error
	getSeen int
}

func newMemCache() *memCache {
	return &memCache{m: map[[2]domain.Coordinates]ports.DistanceResult{}}
}

func (c *memCache) GetMany(_ context.Context, origin domain.Coordinates, dests []domain.Coordinates) (map[domain.Coordinates]ports.DistanceResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.getSeen++
	if c.getErr != nil {
		return nil, c.getErr
	}
	out := map[domain.Coordinates]ports.DistanceResult{}
	for _, d := range dests {
		if r, ok := c.m[[2]domain.Coordinates{origin, d}]; ok {
			out[d] = r
		}
	}
	return out, nil
}

func (c *memCache) PutMany(_ context.Context, origin domain.Coordinates, results map[domain.Coordinates]ports.DistanceResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.putErr != nil {
		return c.putErr
	}
	for d, r := range results {
		c.m[[2]domain.Coordinates{origin, d}] = r
	}
	return nil
}

func TestCachingProviderServesHitsAndFillsMisses(t *testing.T) {
	mock := NewMockDistanceProvider([]MockPair{
		{From: matera, To: altamur, Km: 20},
		{From: matera, To: gravina, Km: 25},
	})
	c := newMemCache()
	p, err := NewCachingProvider(mock, c)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := p.GetDistances(ctx, matera, []domain.Coordinates{altamur, gravina, altamur})
	require.NoError(t, err)
	assert.Equal(t, []ports.DistanceResult{{DistanceKm: 20}, {DistanceKm: 25}, {DistanceKm: 20}}, first)
	// Duplicates are fetched once.
	assert.Equal(t, 2, mock.Calls())

	second, err := p.GetDistance(ctx, matera, gravina)
	require.NoError(t, err)
	assert.Equal(t, 25.0, second.DistanceKm)
	assert.Equal(t, 2, mock.Calls())
}

func TestCachingProviderCacheReadError(t *testing.T) {
	c := newMemCache()
	c.getErr = errors.New("boom")
	p, err := NewCachingProvider(NewGeodesicProvider(), c)
	require.NoError(t, err)

	_, err = p.GetDistance(context.Background(), matera, altamur)
	assert.ErrorContains(t, err, "boom")
}

func TestCachingProviderCacheWriteErrorIsNotFatal(t *testing.T) {
	c := newMemCache()
	c.putErr = errors.New("disk full")
	p, err := NewCachingProvider(NewGeodesicProvider(), c)
	require.NoError(t, err)

	r, err := p.GetDistance(context.Background(), matera, altamur)
	require.NoError(t, err)
	assert.Greater(t, r.DistanceKm, 0.0)
}

func TestCachingProviderProviderError(t *testing.T) {
	p, err := NewCachingProvider(NewMockDistanceProvider(nil), newMemCache())
	require.NoError(t, err)

	_, err = p.GetDistances(context.Background(), matera, []domain.Coordinates{altamur})
	assert.ErrorContains(t, err, "missing pair")
}

func TestNewCachingProviderRequiresDeps(t *testing.T) {
	_, err := NewCachingProvider(nil, newMemCache())
	assert.Error(t, err)
	_, err = NewCachingProvider(NewGeodesicProvider(), nil)
	assert.Error(t, err)
}

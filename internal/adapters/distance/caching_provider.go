package distance

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/obs"
	"delivery-zone-planner/internal/ports"
	"errors"
	"fmt"
	"log"
)

// CachingProvider serves distances from a persistent cache and asks the
// wrapped provider only for misses. Batched lookups are forwarded as one
// matrix request when the wrapped provider supports it.
//
// The provider is safe for concurrent use if the cache and wrapped provider are.
type CachingProvider struct {
	next  ports.DistanceProvider
	cache ports.DistanceCache
}

func NewCachingProvider(next ports.DistanceProvider, cache ports.DistanceCache) (*CachingProvider, error) {
	if next == nil {
		return nil, errors.New("caching provider: wrapped provider is nil")
	}
	if cache == nil {
		return nil, errors.New("caching provider: cache is nil")
	}
	return &CachingProvider{next: next, cache: cache}, nil
}

// Delegate to batched path to reuse caching logic.
func (c *CachingProvider) GetDistance(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.DistanceResult, error) {
	results, err := c.GetDistances(ctx, origin, []domain.Coordinates{destination})
	if err != nil {
		return ports.DistanceResult{}, err
	}
	return results[0], nil
}

func (c *CachingProvider) GetDistances(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ []ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cached.GetDistances")(&err)

	if len(destinations) == 0 {
		return []ports.DistanceResult{}, nil
	}

	// Check persistent distance cache before asking the wrapped provider.
	hits, err := c.cache.GetMany(ctx, origin, destinations)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: %w", err)
	}
	if hits == nil {
		hits = make(map[domain.Coordinates]ports.DistanceResult, len(destinations))
	}

	seen := make(map[domain.Coordinates]struct{}, len(destinations))
	misses := make([]domain.Coordinates, 0, len(destinations))
	for _, d := range destinations {
		if _, ok := hits[d]; ok {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		misses = append(misses, d)
	}

	if len(misses) > 0 {
		fetched, err := c.fetch(ctx, origin, misses)
		if err != nil {
			return nil, err
		}

		fresh := make(map[domain.Coordinates]ports.DistanceResult, len(misses))
		for i, d := range misses {
			fresh[d] = fetched[i]
			hits[d] = fetched[i]
		}

		if err := c.cache.PutMany(ctx, origin, fresh); err != nil {
			log.Printf("distance cache write failed: %v", err)
		}
	}

	out := make([]ports.DistanceResult, len(destinations))
	for i, d := range destinations {
		out[i] = hits[d]
	}
	return out, nil
}

func (c *CachingProvider) fetch(
	ctx context.Context,
	origin domain.Coordinates,
	dests []domain.Coordinates,
) ([]ports.DistanceResult, error) {
	if mp, ok := c.next.(ports.DistanceMatrixProvider); ok {
		results, err := mp.GetDistances(ctx, origin, dests)
		if err != nil {
			return nil, fmt.Errorf("get distances from %v: %w", origin, err)
		}
		if len(results) != len(dests) {
			return nil, fmt.Errorf("get distances from %v: got %d results for %d destinations", origin, len(results), len(dests))
		}
		return results, nil
	}

	results := make([]ports.DistanceResult, len(dests))
	for i, d := range dests {
		r, err := c.next.GetDistance(ctx, origin, d)
		if err != nil {
			return nil, fmt.Errorf("get distance from %v to %v: %w", origin, d, err)
		}
		results[i] = r
	}
	return results, nil
}

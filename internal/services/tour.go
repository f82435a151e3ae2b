package services

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/ports"
	"errors"
	"fmt"
	"math"
)

// BuildTour orders stops with a greedy nearest-neighbour walk from the depot.
//
// Each step moves to the closest unvisited stop; on equal distances the stop
// listed first wins. The walk minimizes the next leg only and makes no claim
// of global optimality. The return leg to the depot is not counted.
func BuildTour(
	ctx context.Context,
	depot domain.Coordinates,
	stops []domain.CustomerPoint,
	distanceProvider ports.DistanceProvider,
) (*domain.Tour, error) {
	if distanceProvider == nil {
		return nil, errors.New("build tour: distance provider must be non-nil")
	}

	if len(stops) == 0 {
		return &domain.Tour{Depot: depot, CustomerIDs: []string{}, DistanceKm: 0}, nil
	}

	remaining := append([]domain.CustomerPoint(nil), stops...)
	route := make([]string, 0, len(stops))
	current := depot
	total := 0.0

	for len(remaining) > 0 {
		dests := make([]domain.Coordinates, len(remaining))
		for i, s := range remaining {
			dests[i] = s.Coords
		}

		legs, err := legsFrom(ctx, distanceProvider, current, dests)
		if err != nil {
			return nil, fmt.Errorf("build tour: %w", err)
		}

		best := 0
		for i := 1; i < len(legs); i++ {
			if legs[i].DistanceKm < legs[best].DistanceKm {
				best = i
			}
		}

		total += legs[best].DistanceKm
		route = append(route, remaining[best].ID)
		current = remaining[best].Coords
		remaining = append(remaining[:best], remaining[best+1:]...)
	}

	return &domain.Tour{
		Depot:       depot,
		CustomerIDs: route,
		DistanceKm:  roundKm(total),
	}, nil
}

// legsFrom fetches distances from origin to every destination, index-aligned.
func legsFrom(
	ctx context.Context,
	distanceProvider ports.DistanceProvider,
	origin domain.Coordinates,
	dests []domain.Coordinates,
) ([]ports.DistanceResult, error) {
	// Prefer batched lookups when supported to reduce provider round trips.
	if mp, ok := distanceProvider.(ports.DistanceMatrixProvider); ok {
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
		r, err := distanceProvider.GetDistance(ctx, origin, d)
		if err != nil {
			return nil, fmt.Errorf("get distance from %v to %v: %w", origin, d, err)
		}
		results[i] = r
	}
	return results, nil
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

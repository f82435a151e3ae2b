package ports

import (
	"context"
	"delivery-zone-planner/internal/domain"
)

// Port: a keyed store for previously computed origin->destination distances.
type DistanceCache interface {
	// Return the cached subset of destinations; misses are absent from the map.
	GetMany(ctx context.Context, origin domain.Coordinates, destinations []domain.Coordinates) (map[domain.Coordinates]DistanceResult, error)
	PutMany(ctx context.Context, origin domain.Coordinates, results map[domain.Coordinates]DistanceResult) error
}

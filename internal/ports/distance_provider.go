package ports

import (
	"context"
	"delivery-zone-planner/internal/domain"
)

// Travel distance between two locations.
type DistanceResult struct {
	DistanceKm float64
}

// Contract for retrieving travel distance between coordinates.
type DistanceProvider interface {
	// Return travel distance between two locations.
	GetDistance(ctx context.Context, origin, destination domain.Coordinates) (DistanceResult, error)
}

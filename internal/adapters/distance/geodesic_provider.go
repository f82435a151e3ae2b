package distance

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/ports"
)

// GeodesicProvider measures great-circle distance. It needs no network and
// is the default provider of the planner.
type GeodesicProvider struct{}

func NewGeodesicProvider() *GeodesicProvider { return &GeodesicProvider{} }

func (GeodesicProvider) GetDistance(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.DistanceResult{}, err
	}
	return ports.DistanceResult{DistanceKm: origin.DistanceKm(destination)}, nil
}

func (GeodesicProvider) GetDistances(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) ([]ports.DistanceResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]ports.DistanceResult, len(destinations))
	for i, d := range destinations {
		out[i] = ports.DistanceResult{DistanceKm: origin.DistanceKm(d)}
	}
	return out, nil
}

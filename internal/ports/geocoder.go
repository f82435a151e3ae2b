package ports

import (
	"context"
	"delivery-zone-planner/internal/domain"
)

// Geocoder resolves a postal address to coordinates. Used only for the depot;
// customer geocoding happens upstream.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Port: a keyed store of previously geocoded addresses.
type GeocodeCache interface {
	// Return the cached subset of addresses; misses are absent from the map.
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}

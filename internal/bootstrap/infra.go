// Package bootstrap wires the optional backing services shared by the
// planner binaries from environment variables.
package bootstrap

import (
	"context"
	"database/sql"
	"delivery-zone-planner/internal/adapters/cache"
	"delivery-zone-planner/internal/adapters/distance"
	"delivery-zone-planner/internal/config"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/db"
	"delivery-zone-planner/internal/ports"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvRedisURL        = "REDIS_URL"
	EnvDistanceTTL     = "DISTANCE_CACHE_TTL"
	EnvDistanceBackend = "DISTANCE_BACKEND"
	EnvORSKey          = "ORS_API_KEY"
	EnvORSBaseURL      = "ORS_BASE_URL"
	EnvDepotLat        = "DEPOT_LAT"
	EnvDepotLon        = "DEPOT_LON"
	EnvDepotAddress    = "DEPOT_ADDRESS"

	BackendGeodesic = "geodesic"
	BackendORS      = "ors"
)

// Infra holds the backing services a process managed to configure.
// Every field is nil when its environment variable is unset.
type Infra struct {
	DB    *sql.DB
	Redis *cache.RedisDistanceCache
	ORS   *distance.ORSClient
}

// Open connects to PostgreSQL (DATABASE_URL), Redis (REDIS_URL) and builds
// the OpenRouteService client (ORS_API_KEY) when configured.
func Open(ctx context.Context) (_ *Infra, err error) {
	infra := &Infra{}
	defer func() {
		if err != nil {
			infra.Close()
		}
	}()

	if url := config.Get(EnvDatabaseURL, ""); url != "" {
		if infra.DB, err = db.Open(ctx, url); err != nil {
			return nil, err
		}
	}

	if url := config.Get(EnvRedisURL, ""); url != "" {
		ttl, err := config.GetDuration(EnvDistanceTTL, 30*24*time.Hour)
		if err != nil {
			return nil, err
		}
		if infra.Redis, err = cache.NewRedisDistanceCache(url, ttl); err != nil {
			return nil, err
		}
		if err := infra.Redis.Ping(ctx); err != nil {
			return nil, fmt.Errorf("bootstrap: ping redis: %w", err)
		}
	}

	if key := config.Get(EnvORSKey, ""); key != "" {
		opts := []distance.ORSOption{}
		if base := config.Get(EnvORSBaseURL, ""); base != "" {
			opts = append(opts, distance.WithBaseURL(base))
		}
		if infra.DB != nil {
			opts = append(opts, distance.WithGeocodeCache(cache.NewSQLGeocodeCache(infra.DB)))
		}
		if infra.ORS, err = distance.NewORSClient(key, opts...); err != nil {
			return nil, err
		}
	}

	return infra, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			log.Printf("bootstrap: close redis: %v", err)
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			log.Printf("bootstrap: close postgres: %v", err)
		}
	}
}

// DistanceProvider returns the backend named by DISTANCE_BACKEND (great-circle
// by default), wrapped in the Redis cache or, failing that, the PostgreSQL cache.
func (i *Infra) DistanceProvider() (ports.DistanceProvider, error) {
	var base ports.DistanceProvider

	switch backend := strings.ToLower(config.Get(EnvDistanceBackend, BackendGeodesic)); backend {
	case BackendGeodesic:
		base = distance.NewGeodesicProvider()
	case BackendORS:
		if i.ORS == nil {
			return nil, fmt.Errorf("bootstrap: %s=%s needs %s", EnvDistanceBackend, BackendORS, EnvORSKey)
		}
		base = i.ORS
	default:
		return nil, fmt.Errorf("bootstrap: unknown %s %q", EnvDistanceBackend, backend)
	}

	var store ports.DistanceCache
	switch {
	case i.Redis != nil:
		store = i.Redis
	case i.DB != nil:
		store = cache.NewSQLDistanceCache(i.DB)
	default:
		return base, nil
	}

	return distance.NewCachingProvider(base, store)
}

// Depot reads DEPOT_LAT/DEPOT_LON, falling back to geocoding DEPOT_ADDRESS.
// It returns nil when neither is set.
func (i *Infra) Depot(ctx context.Context) (*domain.Coordinates, error) {
	lat, lon := config.Get(EnvDepotLat, ""), config.Get(EnvDepotLon, "")
	if lat != "" || lon != "" {
		if lat == "" || lon == "" {
			return nil, fmt.Errorf("bootstrap: %s and %s must be set together", EnvDepotLat, EnvDepotLon)
		}
		la, err := config.GetFloat(EnvDepotLat, 0)
		if err != nil {
			return nil, err
		}
		lo, err := config.GetFloat(EnvDepotLon, 0)
		if err != nil {
			return nil, err
		}
		return &domain.Coordinates{Lat: la, Lon: lo}, nil
	}

	address := config.Get(EnvDepotAddress, "")
	if address == "" {
		return nil, nil
	}
	if i.ORS == nil {
		return nil, fmt.Errorf("bootstrap: %s needs %s for geocoding", EnvDepotAddress, EnvORSKey)
	}

	c, err := i.ORS.Geocode(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: geocode depot: %w", err)
	}
	log.Printf("depot geocoded: address=%q lat=%.6f lon=%.6f", address, c.Lat, c.Lon)
	return &c, nil
}

// Geocoder returns the depot geocoder, or nil when ORS is not configured.
func (i *Infra) Geocoder() ports.Geocoder {
	if i.ORS == nil {
		return nil
	}
	return i.ORS
}

// HealthChecks lists a probe for every configured backing service.
func (i *Infra) HealthChecks() map[string]func(context.Context) error {
	checks := map[string]func(context.Context) error{}
	if i.DB != nil {
		checks["postgres"] = i.DB.PingContext
	}
	if i.Redis != nil {
		checks["redis"] = i.Redis.Ping
	}
	return checks
}

// RequireDB fails unless DATABASE_URL was configured.
func (i *Infra) RequireDB() error {
	if i.DB == nil {
		return errors.New("bootstrap: " + EnvDatabaseURL + " is required")
	}
	return nil
}

package distance

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/obs"
	"delivery-zone-planner/internal/ports"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	defaultORSBaseURL = "https://api.openrouteservice.org"
	defaultORSProfile = "driving-car"
)

// ORSClient talks to OpenRouteService.
//
// It coordinates:
//   - Depot address geocoding with a persistent geocode cache
//   - Road distance matrix rows, as an alternative to great-circle distance
//   - External API calls with retry/backoff
//
// The client is safe for concurrent use.
type ORSClient struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	country      string
	geocodeCache ports.GeocodeCache
}

type ORSOption func(*ORSClient)

// WithBaseURL points the client at another ORS instance, e.g. a self-hosted one.
func WithBaseURL(u string) ORSOption {
	return func(o *ORSClient) { o.baseURL = strings.TrimRight(u, "/") }
}

// WithGeocodeCache enables the persistent geocode cache.
func WithGeocodeCache(c ports.GeocodeCache) ORSOption {
	return func(o *ORSClient) { o.geocodeCache = c }
}

// WithCountry restricts geocoding to an ISO 3166-1 country code.
func WithCountry(code string) ORSOption {
	return func(o *ORSClient) { o.country = code }
}

func NewORSClient(apiKey string, opts ...ORSOption) (*ORSClient, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	client := &ORSClient{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultORSBaseURL,
		profile: defaultORSProfile,
		country: "IT",
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSClient) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Geocode resolves one address, consulting the geocode cache first.
func (o *ORSClient) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := o.normalize(address)
	if norm == "" {
		return domain.Coordinates{}, errors.New("geocode: address must be non-empty")
	}

	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("ORS get geocode cache: %w", err)
		}
		if c, ok := hits[norm]; ok {
			return c, nil
		}
	}

	coords, err := o.geocode(ctx, norm)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", norm, err)
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{norm: coords}); err != nil {
			log.Printf("geocode cache write failed: %v", err)
		}
	}

	return coords, nil
}

// Delegate to batched path to reuse matrix logic.
func (o *ORSClient) GetDistance(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.DistanceResult, error) {
	results, err := o.GetDistances(ctx, origin, []domain.Coordinates{destination})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get distances %v -> %v: %w", origin, destination, err)
	}
	return results[0], nil
}

// GetDistances returns road distances from origin, index-aligned with destinations.
func (o *ORSClient) GetDistances(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) (_ []ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistances")(&err)

	if len(destinations) == 0 {
		return []ports.DistanceResult{}, nil
	}

	// Fetch a single origin->many matrix row.
	out, err := o.fetchMatrixRow(ctx, origin, destinations)
	if err != nil {
		return nil, fmt.Errorf("fetching matrix row: %w", err)
	}
	return out, nil
}

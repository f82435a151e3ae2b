package distance

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestORS(t *testing.T, h http.HandlerFunc, opts ...ORSOption) *ORSClient {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewORSClient("test-key", append([]ORSOption{WithBaseURL(srv.URL)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestNewORSClientRequiresKey(t *testing.T) {
	_, err := NewORSClient("")
	assert.Error(t, err)
}

func TestORSMatrixRow(t *testing.T) {
	c := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/matrix/driving-car", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		var req matrixRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "km", req.Units)
		assert.Equal(t, []int{0}, req.Sources)
		assert.Equal(t, []int{1, 2}, req.Destinations)
		// [lon, lat] order.
		assert.Equal(t, []float64{matera.Lon, matera.Lat}, req.Locations[0])

		_, _ = w.Write([]byte(`{"distances": [[21.4, 27.9]]}`))
	})

	got, err := c.GetDistances(context.Background(), matera, []domain.Coordinates{altamur, gravina})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 21.4, got[0].DistanceKm)
	assert.Equal(t, 27.9, got[1].DistanceKm)
}

func TestORSMatrixUnroutable(t *testing.T) {
	c := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"distances": [[null]]}`))
	})

	_, err := c.GetDistance(context.Background(), matera, altamur)
	assert.ErrorContains(t, err, "no route")
}

func TestORSRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"distances": [[3.5]]}`))
	})

	got, err := c.GetDistance(context.Background(), matera, altamur)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.DistanceKm)
	assert.Equal(t, int32(3), calls.Load())
}

func TestORSDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusForbidden)
	})

	_, err := c.GetDistance(context.Background(), matera, altamur)
	require.Error(t, err)
	assert.ErrorContains(t, err, "403")
	assert.Equal(t, int32(1), calls.Load())
}

type mapGeocodeCache struct {
	mu sync.Mutex
	m  map[string]domain.Coordinates
}

func (c *mapGeocodeCache) GetMany(_ context.Context, addrs []string) (map[string]domain.Coordinates, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := map[string]domain.Coordinates{}
	for _, a := range addrs {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *mapGeocodeCache) PutMany(_ context.Context, res map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range res {
		c.m[k] = v
	}
	return nil
}

func TestORSGeocodeUsesCache(t *testing.T) {
	var calls atomic.Int32
	gc := &mapGeocodeCache{m: map[string]domain.Coordinates{}}
	c := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/geocode/search", r.URL.Path)
		assert.Equal(t, "Via Roma 1, Matera", r.URL.Query().Get("text"))
		assert.Equal(t, "IT", r.URL.Query().Get("boundary.country"))
		_, _ = w.Write([]byte(`{"features": [{"geometry": {"coordinates": [16.604, 40.666]}}]}`))
	}, WithGeocodeCache(gc))

	ctx := context.Background()
	got, err := c.Geocode(ctx, "  Via Roma 1,   Matera ")
	require.NoError(t, err)
	assert.Equal(t, matera, got)

	again, err := c.Geocode(ctx, "Via Roma 1, Matera")
	require.NoError(t, err)
	assert.Equal(t, matera, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestORSGeocodeNoResults(t *testing.T) {
	c := newTestORS(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features": []}`))
	})

	_, err := c.Geocode(context.Background(), "nowhere")
	assert.ErrorContains(t, err, "no geocode results")
}

func TestORSGeocodeBlankAddress(t *testing.T) {
	c, err := NewORSClient("k")
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "   ")
	assert.Error(t, err)
}

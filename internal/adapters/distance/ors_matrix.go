package distance

import (
	"bytes"
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/ports"
	"encoding/json"
	"fmt"
	"net/http"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
	Units        string      `json:"units"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
}

// fetchMatrixRow retrieves road distances in km from one origin to many
// destinations using the OpenRouteService matrix endpoint.
func (o *ORSClient) fetchMatrixRow(
	ctx context.Context,
	origin domain.Coordinates,
	destinations []domain.Coordinates,
) ([]ports.DistanceResult, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	// ORS expects [lon, lat] pairs.
	locations := make([][]float64, 0, 1+len(destinations))
	locations = append(locations, []float64{origin.Lon, origin.Lat})
	for _, c := range destinations {
		locations = append(locations, []float64{c.Lon, c.Lat})
	}

	destIdx := make([]int, 0, len(destinations))
	for i := 1; i < len(locations); i++ {
		destIdx = append(destIdx, i)
	}

	payload, err := json.Marshal(matrixRequest{
		Locations:    locations,
		Destinations: destIdx,
		Metrics:      []string{"distance"},
		Sources:      []int{0},
		Units:        "km",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != 1 {
		return nil, fmt.Errorf("expected 1 source row; got %d", len(mr.Distances))
	}

	row := mr.Distances[0]
	if len(row) != len(destinations) {
		return nil, fmt.Errorf("row length %d does not match %d destinations", len(row), len(destinations))
	}

	out := make([]ports.DistanceResult, len(destinations))
	for i, km := range row {
		// ORS reports unroutable pairs as null.
		if km == nil {
			return nil, fmt.Errorf("matrix returned no route to %v", destinations[i])
		}
		out[i] = ports.DistanceResult{DistanceKm: *km}
	}

	return out, nil
}

package services

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repairFixture builds four clustered points and one noise point whose
// standardized distance to the cluster is noiseDist. All five customers lie
// within a few hundred metres of each other unless noiseLat moves the noise
// point away.
func repairFixture(noiseDist, noiseLat float64) ([]domain.CustomerPoint, *Clustering) {
	zone := domain.Sub(0, 1)
	points := []domain.CustomerPoint{
		{ID: "C1", Coords: domain.Coordinates{Lat: 40.000, Lon: 15.000}},
		{ID: "C2", Coords: domain.Coordinates{Lat: 40.001, Lon: 15.000}},
		{ID: "C3", Coords: domain.Coordinates{Lat: 40.000, Lon: 15.001}},
		{ID: "C4", Coords: domain.Coordinates{Lat: 40.001, Lon: 15.001}},
		{ID: "N1", Coords: domain.Coordinates{Lat: noiseLat, Lon: 15.002}},
	}

	c := &Clustering{
		Standardized: [][]float64{{0, 0}, {0.1, 0}, {0, 0.1}, {0.1, 0.1}, {0.1 + noiseDist, 0}},
		Clusters:     1,
		Noise:        1,
	}
	for _, p := range points {
		a := domain.ClusterAssignment{CustomerID: p.ID, Raw: 0, Zone: zone}
		if p.ID == "N1" {
			a = domain.ClusterAssignment{CustomerID: p.ID, Raw: domain.Noise, Zone: domain.Outlier}
		}
		c.Assignments = append(c.Assignments, a)
	}
	return points, c
}

func TestShouldReassign(t *testing.T) {
	p := DefaultRepairParams()

	tests := []struct {
		dist    float64
		density int
		want    bool
	}{
		{0.2, 5, true},
		{0.5, 5, false},
		{0.35, 5, false},
		{0.2, 3, true},
		{0.2, 2, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShouldReassign(tt.dist, tt.density, p), "dist=%v density=%d", tt.dist, tt.density)
	}
}

func TestRepairOutliersReassignsCloseDenseNoise(t *testing.T) {
	points, c := repairFixture(0.2, 40.002)

	got, err := RepairOutliers(context.Background(), points, c, DefaultRepairParams())
	require.NoError(t, err)
	require.Len(t, got, 5)

	n := got[4]
	assert.True(t, n.Reassigned)
	assert.Equal(t, domain.Sub(0, 1), n.Final)
	assert.Equal(t, domain.Noise, n.Raw)
	assert.Equal(t, 5, n.LocalDensity)
	assert.InDelta(t, 0.2, n.NearestDistance, 1e-9)

	for _, a := range got[:4] {
		assert.False(t, a.Reassigned)
		assert.Equal(t, a.Zone, a.Final)
	}
}

func TestRepairOutliersKeepsFarNoise(t *testing.T) {
	points, c := repairFixture(0.5, 40.002)

	got, err := RepairOutliers(context.Background(), points, c, DefaultRepairParams())
	require.NoError(t, err)

	n := got[4]
	assert.False(t, n.Reassigned)
	assert.True(t, n.Final.IsOutlier())
	assert.Equal(t, 5, n.LocalDensity)
	assert.InDelta(t, 0.5, n.NearestDistance, 1e-9)
}

func TestRepairOutliersKeepsIsolatedNoise(t *testing.T) {
	// About 110 km north of the others: close in standardized space only.
	points, c := repairFixture(0.1, 41.0)

	got, err := RepairOutliers(context.Background(), points, c, DefaultRepairParams())
	require.NoError(t, err)

	assert.False(t, got[4].Reassigned)
	assert.Equal(t, 1, got[4].LocalDensity)
}

func TestRepairOutliersWithoutClusters(t *testing.T) {
	points := []domain.CustomerPoint{
		{ID: "A", Coords: domain.Coordinates{Lat: 40, Lon: 15}},
		{ID: "B", Coords: domain.Coordinates{Lat: 40, Lon: 15.001}},
	}
	c := &Clustering{
		Standardized: [][]float64{{-1, 0}, {1, 0}},
		Assignments: []domain.ClusterAssignment{
			{CustomerID: "A", Raw: domain.Noise, Zone: domain.Outlier},
			{CustomerID: "B", Raw: domain.Noise, Zone: domain.Outlier},
		},
		Noise: 2,
	}

	got, err := RepairOutliers(context.Background(), points, c, DefaultRepairParams())
	require.NoError(t, err)

	for _, a := range got {
		assert.False(t, a.Reassigned)
		assert.Equal(t, -1.0, a.NearestDistance)
		assert.Equal(t, 2, a.LocalDensity)
	}
}

func TestRepairOutliersRejectsMismatchedInput(t *testing.T) {
	points, c := repairFixture(0.2, 40.002)

	_, err := RepairOutliers(context.Background(), points[:3], c, DefaultRepairParams())
	assert.Error(t, err)

	_, err = RepairOutliers(context.Background(), points, nil, DefaultRepairParams())
	assert.Error(t, err)
}

func TestLocalDensity(t *testing.T) {
	points := []domain.CustomerPoint{
		{ID: "A", Coords: domain.Coordinates{Lat: 40.00, Lon: 15.00}},
		{ID: "B", Coords: domain.Coordinates{Lat: 40.05, Lon: 15.00}}, // ~5.6 km
		{ID: "C", Coords: domain.Coordinates{Lat: 40.20, Lon: 15.00}}, // ~22 km
	}

	assert.Equal(t, 2, LocalDensity(points, 0, 10))
	assert.Equal(t, 1, LocalDensity(points, 2, 10))
	assert.Equal(t, 3, LocalDensity(points, 0, 25))
}

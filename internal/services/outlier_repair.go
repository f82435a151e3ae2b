package services

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/obs"
	"errors"
	"fmt"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"
)

// RepairParams decides when a noise point is merged into a nearby cluster.
// The defaults were tuned by hand for one regional deployment.
type RepairParams struct {
	// Standardized distance to the nearest clustered point must be strictly below this.
	DistanceThreshold float64 `yaml:"distance_threshold"`
	// Points within DensityRadiusKm (the point itself included) must reach this count.
	DensityThreshold int     `yaml:"density_threshold"`
	DensityRadiusKm  float64 `yaml:"density_radius_km"`
}

func DefaultRepairParams() RepairParams {
	return RepairParams{
		DistanceThreshold: 0.35,
		DensityThreshold:  3,
		DensityRadiusKm:   10,
	}
}

// ShouldReassign is the repair rule: close to a cluster in standardized space
// and not isolated on the ground.
func ShouldReassign(distance float64, density int, p RepairParams) bool {
	return distance < p.DistanceThreshold && density >= p.DensityThreshold
}

// RepairOutliers revisits every noise point of c. A point inherits the zone of
// its nearest clustered neighbour when ShouldReassign holds; otherwise it stays
// an outlier. Clustered points pass through unchanged.
func RepairOutliers(
	ctx context.Context,
	points []domain.CustomerPoint,
	c *Clustering,
	p RepairParams,
) (_ []domain.RepairedAssignment, err error) {
	defer obs.Time(ctx, "repair")(&err)

	if c == nil {
		return nil, errors.New("repair outliers: clustering must be non-nil")
	}
	if len(points) != len(c.Assignments) || len(points) != len(c.Standardized) {
		return nil, fmt.Errorf(
			"repair outliers: %d points but %d assignments and %d standardized rows",
			len(points), len(c.Assignments), len(c.Standardized),
		)
	}

	clustered := make([]int, 0, len(points))
	for i, a := range c.Assignments {
		if a.Raw != domain.Noise {
			clustered = append(clustered, i)
		}
	}

	out := make([]domain.RepairedAssignment, len(points))
	reassigned := 0
	for i, a := range c.Assignments {
		out[i] = domain.RepairedAssignment{ClusterAssignment: a, Final: a.Zone}
		if a.Raw != domain.Noise {
			continue
		}

		density := LocalDensity(points, i, p.DensityRadiusKm)
		out[i].LocalDensity = density
		out[i].NearestDistance = -1

		nearest, dist := nearestClustered(c.Standardized, i, clustered)
		if nearest < 0 {
			continue
		}
		out[i].NearestDistance = dist

		if ShouldReassign(dist, density, p) {
			out[i].Final = c.Assignments[nearest].Zone
			out[i].Reassigned = true
			reassigned++
		}
	}

	log.Printf("repair: noise=%d reassigned=%d", c.Noise, reassigned)
	return out, nil
}

// LocalDensity counts the points of the whole dataset within radiusKm of
// points[i] by great-circle distance, points[i] included.
func LocalDensity(points []domain.CustomerPoint, i int, radiusKm float64) int {
	origin := points[i].Coords
	n := 0
	for _, q := range points {
		if origin.DistanceKm(q.Coords) <= radiusKm {
			n++
		}
	}
	return n
}

// nearestClustered returns the index of the clustered point closest to std[i]
// and its Euclidean distance; the first one wins on ties. It returns -1 when
// candidates is empty.
func nearestClustered(std [][]float64, i int, candidates []int) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for _, j := range candidates {
		if d := floats.Distance(std[i], std[j], 2); d < bestDist {
			bestDist = d
			best = j
		}
	}
	return best, bestDist
}

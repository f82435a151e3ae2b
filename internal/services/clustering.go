package services

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/obs"
	"errors"
	"fmt"
	"log"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ClusterParams tunes the density pass and the sub-partitioning of large clusters.
type ClusterParams struct {
	// Neighbourhood radius in standardized coordinate space.
	Eps float64 `yaml:"eps"`
	// Minimum neighbourhood size of a core point, the point itself included.
	MinPts int `yaml:"min_pts"`
	// Number of k-means sub-clusters for each oversized cluster.
	Subclusters int `yaml:"subclusters"`
	// How many of the most populated clusters are sub-partitioned.
	SplitLargest int `yaml:"split_largest"`
	// Clusters at or below this population are never sub-partitioned.
	SplitMinSize int `yaml:"split_min_size"`
	// Seed of the k-means centroid initialisation.
	Seed uint64 `yaml:"seed"`
}

func DefaultClusterParams() ClusterParams {
	return ClusterParams{
		Eps:          0.3,
		MinPts:       4,
		Subclusters:  4,
		SplitLargest: 2,
		SplitMinSize: 0,
		Seed:         42,
	}
}

// Clustering is the output of ClusterCustomers. Standardized and
// Assignments are index-aligned with the input points.
type Clustering struct {
	Standardized [][]float64
	Assignments  []domain.ClusterAssignment
	Clusters     int
	Noise        int
	Quality      domain.ClusterQuality
}

// ClusterCustomers partitions customers into density clusters and splits the
// largest ones into Subclusters zones each.
//
// Coordinates are standardized per axis before any distance is measured so
// that latitude and longitude contribute on the same scale.
func ClusterCustomers(
	ctx context.Context,
	points []domain.CustomerPoint,
	p ClusterParams,
) (_ *Clustering, err error) {
	defer obs.Time(ctx, "cluster")(&err)

	if p.Eps <= 0 {
		return nil, errors.New("cluster customers: eps must be positive")
	}
	if p.MinPts < 1 {
		return nil, errors.New("cluster customers: min_pts must be at least 1")
	}
	if p.Subclusters < 1 {
		return nil, errors.New("cluster customers: subclusters must be at least 1")
	}
	if p.SplitLargest < 0 {
		return nil, errors.New("cluster customers: split_largest must not be negative")
	}

	coords := make([]domain.Coordinates, len(points))
	for i, pt := range points {
		coords[i] = pt.Coords
	}
	std := Standardize(coords)

	raw := dbscan(std, p.Eps, p.MinPts)

	sizes := map[int]int{}
	noise := 0
	for _, l := range raw {
		if l == domain.Noise {
			noise++
			continue
		}
		sizes[l]++
	}

	quality := domain.ClusterQuality{}
	if len(sizes) >= 2 {
		quality = domain.ClusterQuality{Computable: true, Silhouette: Silhouette(std, raw)}
	} else {
		log.Printf("cluster: silhouette not computable clusters=%d", len(sizes))
	}

	zones := make([]domain.Zone, len(points))
	for i, l := range raw {
		if l == domain.Noise {
			zones[i] = domain.Outlier
		} else {
			zones[i] = domain.Flat(l)
		}
	}

	for _, parent := range clustersToSplit(sizes, p) {
		members := make([]int, 0, sizes[parent])
		for i, l := range raw {
			if l == parent {
				members = append(members, i)
			}
		}

		// The parent is re-standardized on its own so the split follows its internal spread.
		sub := make([]domain.Coordinates, len(members))
		for j, idx := range members {
			sub[j] = coords[idx]
		}
		labels := KMeans(Standardize(sub), p.Subclusters, p.Seed)
		for j, idx := range members {
			zones[idx] = domain.Sub(parent, labels[j])
		}
		log.Printf("cluster: split parent=%d size=%d k=%d", parent, len(members), p.Subclusters)
	}

	assignments := make([]domain.ClusterAssignment, len(points))
	for i, pt := range points {
		assignments[i] = domain.ClusterAssignment{
			CustomerID: pt.ID,
			Raw:        raw[i],
			Zone:       zones[i],
		}
	}

	log.Printf("cluster: points=%d clusters=%d noise=%d", len(points), len(sizes), noise)

	return &Clustering{
		Standardized: std,
		Assignments:  assignments,
		Clusters:     len(sizes),
		Noise:        noise,
		Quality:      quality,
	}, nil
}

// clustersToSplit picks the SplitLargest most populated clusters that exceed
// SplitMinSize and hold at least Subclusters points. Ties go to the lower index.
func clustersToSplit(sizes map[int]int, p ClusterParams) []int {
	eligible := make([]int, 0, len(sizes))
	for c, n := range sizes {
		if n > p.SplitMinSize && n >= p.Subclusters {
			eligible = append(eligible, c)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if sizes[a] != sizes[b] {
			return sizes[a] > sizes[b]
		}
		return a < b
	})

	if len(eligible) > p.SplitLargest {
		eligible = eligible[:p.SplitLargest]
	}
	sort.Ints(eligible)
	return eligible
}

// Standardize rescales latitude and longitude to zero mean and unit
// population variance. A constant axis is centred but not scaled.
func Standardize(coords []domain.Coordinates) [][]float64 {
	n := len(coords)
	out := make([][]float64, n)
	if n == 0 {
		return out
	}

	lat := make([]float64, n)
	lon := make([]float64, n)
	for i, c := range coords {
		lat[i] = c.Lat
		lon[i] = c.Lon
	}

	mLat, sLat := stat.PopMeanStdDev(lat, nil)
	mLon, sLon := stat.PopMeanStdDev(lon, nil)
	if sLat == 0 {
		sLat = 1
	}
	if sLon == 0 {
		sLon = 1
	}

	for i := range coords {
		out[i] = []float64{(lat[i] - mLat) / sLat, (lon[i] - mLon) / sLon}
	}
	return out
}

// dbscan labels each point with a cluster index or domain.Noise.
// Clusters are numbered in order of discovery while scanning the input;
// a border point joins the first cluster that reaches it.
func dbscan(points [][]float64, eps float64, minPts int) []int {
	n := len(points)

	neighbors := radiusNeighbors(points, eps)

	labels := make([]int, n)
	for i := range labels {
		labels[i] = domain.Noise
	}

	cluster := 0
	for i := 0; i < n; i++ {
		if labels[i] != domain.Noise || len(neighbors[i]) < minPts {
			continue
		}

		labels[i] = cluster
		stack := []int{i}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if len(neighbors[cur]) < minPts {
				continue
			}
			for _, q := range neighbors[cur] {
				if labels[q] != domain.Noise {
					continue
				}
				labels[q] = cluster
				stack = append(stack, q)
			}
		}
		cluster++
	}

	return labels
}

// Silhouette is the mean silhouette coefficient of all non-noise points.
// Callers must ensure at least two clusters exist.
func Silhouette(points [][]float64, labels []int) float64 {
	byCluster := map[int][]int{}
	for i, l := range labels {
		if l != domain.Noise {
			byCluster[l] = append(byCluster[l], i)
		}
	}

	total := 0.0
	count := 0
	for i, l := range labels {
		if l == domain.Noise {
			continue
		}
		count++

		own := byCluster[l]
		if len(own) < 2 {
			// Singleton clusters score 0.
			continue
		}

		a := 0.0
		for _, j := range own {
			if j != i {
				a += floats.Distance(points[i], points[j], 2)
			}
		}
		a /= float64(len(own) - 1)

		b := -1.0
		for other, members := range byCluster {
			if other == l {
				continue
			}
			d := 0.0
			for _, j := range members {
				d += floats.Distance(points[i], points[j], 2)
			}
			d /= float64(len(members))
			if b < 0 || d < b {
				b = d
			}
		}

		if b < 0 {
			continue
		}
		if m := max(a, b); m > 0 {
			total += (b - a) / m
		}
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// KDistance returns, in ascending order, the distance of every point to its
// k-th nearest neighbour (the point itself counts as the first). Plotting it
// is the usual way to pick Eps for a given MinPts.
func KDistance(points [][]float64, k int) ([]float64, error) {
	if k < 1 || k > len(points) {
		return nil, fmt.Errorf("k-distance: k=%d out of range for %d points", k, len(points))
	}

	out := make([]float64, len(points))
	dists := make([]float64, len(points))
	for i := range points {
		for j := range points {
			dists[j] = floats.Distance(points[i], points[j], 2)
		}
		sort.Float64s(dists)
		out[i] = dists[k-1]
	}
	sort.Float64s(out)
	return out, nil
}

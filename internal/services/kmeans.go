package services

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

const kmeansMaxIter = 300

// KMeans partitions points into k groups and returns each point's group index.
// Centroids are seeded with k-means++ from a PCG source built on seed, so the
// same input and seed always give the same labels.
func KMeans(points [][]float64, k int, seed uint64) []int {
	n := len(points)
	labels := make([]int, n)
	if n == 0 || k <= 1 {
		return labels
	}
	if k > n {
		k = n
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	centroids := seedCentroids(points, k, rng)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := iter == 0
		for i, p := range points {
			if best := nearestCentroid(p, centroids); best != labels[i] {
				labels[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, len(points[0]))
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		for c := range centroids {
			if counts[c] == 0 {
				// Re-seed an empty group with the point worst served by its centroid.
				far := farthestPoint(points, labels, centroids)
				centroids[c] = append([]float64(nil), points[far]...)
				labels[far] = c
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			centroids[c] = sums[c]
		}
	}

	return labels
}

func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rng.IntN(len(points))
	centroids = append(centroids, append([]float64(nil), points[first]...))

	d2 := make([]float64, len(points))
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			d := floats.Distance(p, centroids[nearestCentroid(p, centroids)], 2)
			d2[i] = d * d
			total += d2[i]
		}

		next := 0
		if total == 0 {
			// All remaining points coincide with a centroid.
			next = rng.IntN(len(points))
		} else {
			target := rng.Float64() * total
			acc := 0.0
			for i, w := range d2 {
				acc += w
				if acc >= target && w > 0 {
					next = i
					break
				}
			}
		}
		centroids = append(centroids, append([]float64(nil), points[next]...))
	}
	return centroids
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := floats.Distance(p, centroid, 2); d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

func farthestPoint(points [][]float64, labels []int, centroids [][]float64) int {
	far := 0
	farDist := -1.0
	for i, p := range points {
		if d := floats.Distance(p, centroids[labels[i]], 2); d > farDist {
			farDist = d
			far = i
		}
	}
	return far
}

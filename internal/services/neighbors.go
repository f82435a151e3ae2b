package services

import (
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// radiusNeighbors returns, for every point, the ascending indices of all
// points within Euclidean distance eps of it, the point itself included.
// Queries run against a k-d tree built once over the whole set.
func radiusNeighbors(points [][]float64, eps float64) [][]int {
	out := make([][]int, len(points))
	if len(points) == 0 {
		return out
	}

	indexed := make(indexedPoints, len(points))
	for i, p := range points {
		indexed[i] = indexedPoint{coords: p, index: i}
	}
	// kdtree.New reorders its input in place; indexed is our own copy.
	tree := kdtree.New(indexed, false)

	for i, p := range points {
		keep := kdtree.NewDistKeeper(eps * eps)
		tree.NearestSet(keep, indexedPoint{coords: p, index: i})

		for _, c := range keep.Heap {
			// The keeper seeds its heap with a nil sentinel holding the radius.
			q, ok := c.Comparable.(indexedPoint)
			if !ok {
				continue
			}
			out[i] = append(out[i], q.index)
		}
		sort.Ints(out[i])
	}
	return out
}

// indexedPoint is a standardized coordinate that remembers its input position.
type indexedPoint struct {
	coords []float64
	index  int
}

func (p indexedPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coords[d] - c.(indexedPoint).coords[d]
}

func (p indexedPoint) Dims() int { return len(p.coords) }

// Distance is the squared Euclidean distance, as the tree's pruning expects.
func (p indexedPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(indexedPoint)
	sum := 0.0
	for k, v := range p.coords {
		d := v - q.coords[k]
		sum += d * d
	}
	return sum
}

type indexedPoints []indexedPoint

func (p indexedPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p indexedPoints) Len() int                      { return len(p) }
func (p indexedPoints) Pivot(d kdtree.Dim) int        { return indexedPlane{indexedPoints: p, Dim: d}.Pivot() }
func (p indexedPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// indexedPlane orders points along one dimension for median selection.
type indexedPlane struct {
	indexedPoints
	kdtree.Dim
}

func (p indexedPlane) Less(i, j int) bool {
	return p.indexedPoints[i].coords[p.Dim] < p.indexedPoints[j].coords[p.Dim]
}

func (p indexedPlane) Swap(i, j int) {
	p.indexedPoints[i], p.indexedPoints[j] = p.indexedPoints[j], p.indexedPoints[i]
}

func (p indexedPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p indexedPlane) Slice(start, end int) kdtree.SortSlicer {
	p.indexedPoints = p.indexedPoints[start:end]
	return p
}

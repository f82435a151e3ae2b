package domain

// ClusterAssignment is the clustering output for one customer.
// Raw is the density cluster index (or Noise); Zone is the label after
// sub-partitioning oversized clusters.
type ClusterAssignment struct {
	CustomerID string
	Raw        int
	Zone       Zone
}

// RepairedAssignment is a ClusterAssignment after outlier repair.
// Final differs from Zone only when Reassigned is true.
type RepairedAssignment struct {
	ClusterAssignment
	Final      Zone
	Reassigned bool
	// Populated for noise points only.
	LocalDensity    int
	NearestDistance float64
}

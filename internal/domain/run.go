package domain

// ClusterQuality reports the silhouette score over non-noise points.
// Computable is false when fewer than two clusters exist.
type ClusterQuality struct {
	Computable bool
	Silhouette float64
}

type RunDiagnostics struct {
	Rejected          int
	Clusters          int
	NoisePoints       int
	Reassigned        int
	Quality           ClusterQuality
	ExcludedGroups    int
	RescheduledOrders int
	DroppedOrders     int
	Vehicles          int
}

// RunResult is everything one planning run produces. It is a pure function
// of the run's inputs.
type RunResult struct {
	RunID       string
	Assignments []RepairedAssignment
	Schedule    Schedule
	Routes      []RoutePlan
	Daily       []DailySummary
	Rejected    []RejectedRecord
	Diagnostics RunDiagnostics
}

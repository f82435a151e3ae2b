package metrics

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "planner"

var (
	// Registry is the dedicated Prometheus registry for the planner.
	Registry = prometheus.NewRegistry()

	// Runs counts planning runs by outcome.
	Runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "runs_total", Help: "Planning runs by status."},
		[]string{"status"},
	)
	// StageDuration records pipeline stage and adapter call durations.
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"op"},
	)
	RejectedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "rejected_records_total", Help: "Customers rejected for invalid coordinates.",
	})
	OutliersReassigned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "outliers_reassigned_total", Help: "Noise points merged into a nearby cluster.",
	})
	OrdersRescheduled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "orders_rescheduled_total", Help: "Orphan deliveries moved to a nearby date.",
	})
	OrdersDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "orders_dropped_total", Help: "Orphan deliveries left out of the plan.",
	})
	VehiclesPlanned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "vehicles_planned_total", Help: "Vehicle routes produced.",
	})
	RouteDistance = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "route_distance_km",
		Help:      "Distance of planned vehicle routes in km.",
		Buckets:   prometheus.ExponentialBuckets(5, 2, 8),
	})
)

var regOnce sync.Once

// Register adds the planner collectors to Registry. Safe to call repeatedly.
func Register() {
	regOnce.Do(func() {
		Registry.MustRegister(Runs, StageDuration, RejectedRecords, OutliersReassigned,
			OrdersRescheduled, OrdersDropped, VehiclesPlanned, RouteDistance)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

// Push sends the registry to a Prometheus Pushgateway; batch runs exit
// before a scrape could happen.
func Push(ctx context.Context, gatewayURL, job string) error {
	if err := push.New(gatewayURL, job).Gatherer(Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %q: %w", gatewayURL, err)
	}
	return nil
}

package services

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/metrics"
	"delivery-zone-planner/internal/platform/obs"
	"delivery-zone-planner/internal/ports"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// Options carries every tunable of a planning run.
type Options struct {
	Bounds     domain.BoundingBox
	Clustering ClusterParams
	Repair     RepairParams
	Schedule   ScheduleParams
	Batching   BatchParams
	Timing     TimeParams
	// Upper bound on tours built concurrently.
	Workers int
}

// Input is the data of one planning run.
type Input struct {
	Customers []domain.CustomerRecord
	Forecasts []domain.Forecast
	Depot     domain.Coordinates
}

// Planner runs the zone-assignment and route-construction pipeline.
type Planner struct {
	Provider ports.DistanceProvider
	Options  Options
}

func NewPlanner(provider ports.DistanceProvider, opts Options) *Planner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Planner{Provider: provider, Options: opts}
}

// Run executes validate, cluster, repair, schedule, batch, tour and timing in
// sequence. Inputs are never mutated. Only malformed input tables, bad
// parameters and distance provider failures abort a run; every other
// anomaly is reported through the result's diagnostics.
func (p *Planner) Run(ctx context.Context, in Input) (_ *domain.RunResult, err error) {
	if obs.RunID(ctx) == "" {
		ctx = obs.WithRunID(ctx, "")
	}
	runID := obs.RunID(ctx)

	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.Runs.WithLabelValues(status).Inc()
	}()
	defer obs.Time(ctx, "plan run")(&err)

	if p.Provider == nil {
		return nil, errors.New("plan run: distance provider must be non-nil")
	}
	if !in.Depot.IsFinite() {
		return nil, fmt.Errorf("plan run: depot %v: %w", in.Depot, domain.ErrMalformedInput)
	}

	points, rejected, err := ValidateCustomers(in.Customers, p.Options.Bounds)
	if err != nil {
		return nil, fmt.Errorf("plan run: %w", err)
	}

	clustering, err := ClusterCustomers(ctx, points, p.Options.Clustering)
	if err != nil {
		return nil, fmt.Errorf("plan run: %w", err)
	}

	assignments, err := RepairOutliers(ctx, points, clustering, p.Options.Repair)
	if err != nil {
		return nil, fmt.Errorf("plan run: %w", err)
	}

	zones := make(map[string]domain.Zone, len(assignments))
	reassigned := 0
	for _, a := range assignments {
		zones[a.CustomerID] = a.Final
		if a.Reassigned {
			reassigned++
		}
	}

	schedule, err := BuildSchedule(ctx, in.Forecasts, zones, p.Options.Schedule)
	if err != nil {
		return nil, fmt.Errorf("plan run: %w", err)
	}

	var batches []domain.VehicleBatch
	for _, g := range schedule.Groups {
		bs, err := BatchGroup(g, p.Options.Batching)
		if err != nil {
			return nil, fmt.Errorf("plan run: %w", err)
		}
		batches = append(batches, bs...)
	}

	routes, err := p.BuildRoutes(ctx, in.Depot, points, batches)
	if err != nil {
		return nil, fmt.Errorf("plan run: %w", err)
	}

	result := &domain.RunResult{
		RunID:       runID,
		Assignments: assignments,
		Schedule:    schedule,
		Routes:      routes,
		Daily:       SummarizeDays(routes),
		Rejected:    rejected,
		Diagnostics: domain.RunDiagnostics{
			Rejected:          len(rejected),
			Clusters:          clustering.Clusters,
			NoisePoints:       clustering.Noise,
			Reassigned:        reassigned,
			Quality:           clustering.Quality,
			ExcludedGroups:    len(schedule.Excluded),
			RescheduledOrders: len(schedule.Rescheduled),
			DroppedOrders:     len(schedule.Dropped),
			Vehicles:          len(routes),
		},
	}

	recordRun(result)
	log.Printf("plan run: run_id=%s customers=%d rejected=%d zones=%d vehicles=%d",
		runID, len(points), len(rejected), len(schedule.Groups), len(routes))

	return result, nil
}

// BuildRoutes builds one tour per batch with at most Options.Workers tours in
// flight. The output is index-aligned with batches regardless of completion order.
func (p *Planner) BuildRoutes(
	ctx context.Context,
	depot domain.Coordinates,
	points []domain.CustomerPoint,
	batches []domain.VehicleBatch,
) (_ []domain.RoutePlan, err error) {
	defer obs.Time(ctx, "build routes")(&err)

	byID := make(map[string]domain.CustomerPoint, len(points))
	for _, pt := range points {
		byID[pt.ID] = pt
	}

	stops := make([][]domain.CustomerPoint, len(batches))
	for i, b := range batches {
		stops[i] = make([]domain.CustomerPoint, 0, len(b.CustomerIDs))
		for _, id := range b.CustomerIDs {
			pt, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("build routes: vehicle %s: unknown customer %q", b.VehicleID, id)
			}
			stops[i] = append(stops[i], pt)
		}
	}

	routes := make([]domain.RoutePlan, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.Options.Workers, 1))

	for i, b := range batches {
		g.Go(func() error {
			tour, err := BuildTour(gctx, depot, stops[i], p.Provider)
			if err != nil {
				return fmt.Errorf("build routes: vehicle %s: %w", b.VehicleID, err)
			}

			est, err := EstimateRouteTime(tour.DistanceKm, len(tour.CustomerIDs), p.Options.Timing)
			if err != nil {
				return fmt.Errorf("build routes: vehicle %s: %w", b.VehicleID, err)
			}

			routes[i] = domain.RoutePlan{Batch: b, Tour: *tour, Time: est}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return routes, nil
}

// RunFromRepository loads customers and forecasts from repo and runs the pipeline.
func (p *Planner) RunFromRepository(
	ctx context.Context,
	repo ports.CustomerRepository,
	depot domain.Coordinates,
) (*domain.RunResult, error) {
	customers, err := repo.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan run: list customers: %w", err)
	}

	forecasts, err := repo.ListForecasts(ctx)
	if err != nil {
		return nil, fmt.Errorf("plan run: list forecasts: %w", err)
	}

	return p.Run(ctx, Input{Customers: customers, Forecasts: forecasts, Depot: depot})
}

func recordRun(r *domain.RunResult) {
	d := r.Diagnostics
	metrics.RejectedRecords.Add(float64(d.Rejected))
	metrics.OutliersReassigned.Add(float64(d.Reassigned))
	metrics.OrdersRescheduled.Add(float64(d.RescheduledOrders))
	metrics.OrdersDropped.Add(float64(d.DroppedOrders))
	metrics.VehiclesPlanned.Add(float64(d.Vehicles))
	for _, route := range r.Routes {
		metrics.RouteDistance.Observe(route.Tour.DistanceKm)
	}
}

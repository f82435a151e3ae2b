package repositories

import (
	"context"
	"database/sql"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/db"
	"delivery-zone-planner/internal/platform/obs"
	"errors"
	"fmt"
)

// PostgreSQL-backed implementation of the PlanRepository port.
// Each run is written in one transaction under its run id.
type PostgresPlanRepository struct{ DB *sql.DB }

func NewPostgresPlanRepository(db *sql.DB) *PostgresPlanRepository {
	return &PostgresPlanRepository{DB: db}
}

func (p *PostgresPlanRepository) SaveRun(ctx context.Context, run *domain.RunResult) (err error) {
	defer obs.Time(ctx, "plan.repo.SaveRun")(&err)

	if p.DB == nil {
		return errors.New("postgres plan repository: DB is nil")
	}
	if run == nil || run.RunID == "" {
		return errors.New("save run: run and run id must be set")
	}

	d := run.Diagnostics
	var silhouette sql.NullFloat64
	if d.Quality.Computable {
		silhouette = sql.NullFloat64{Float64: d.Quality.Silhouette, Valid: true}
	}

	err = db.InTx(ctx, p.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO planning_runs (
			run_id, clusters, noise_points, reassigned, silhouette, rejected,
			excluded_groups, rescheduled_orders, dropped_orders, vehicles
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`, run.RunID, d.Clusters, d.NoisePoints, d.Reassigned, silhouette, d.Rejected,
			d.ExcludedGroups, d.RescheduledOrders, d.DroppedOrders, d.Vehicles,
		); err != nil {
			return fmt.Errorf("insert planning_runs: %w", err)
		}

		steps := []struct {
			name string
			fn   func(context.Context, *sql.Tx, *domain.RunResult) error
		}{
			{"cluster_assignments", saveAssignments},
			{"delivery_plan", saveDeliveryPlan},
			{"routes", saveRoutes},
			{"rejected_customers", saveRejected},
		}
		for _, s := range steps {
			if err := s.fn(ctx, tx, run); err != nil {
				return fmt.Errorf("%s: %w", s.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.RunID, err)
	}

	return nil
}

func saveAssignments(ctx context.Context, tx *sql.Tx, run *domain.RunResult) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO cluster_assignments (run_id, customer_id, cluster_raw, cluster_final, zone_label, reassigned)
	VALUES ($1, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, a := range run.Assignments {
		if _, err := stmt.ExecContext(ctx, run.RunID, a.CustomerID, a.Raw, a.Final.Code(), a.Final.Label(), a.Reassigned); err != nil {
			return fmt.Errorf("insert customer_id=%s: %w", a.CustomerID, err)
		}
	}
	return nil
}

func saveDeliveryPlan(ctx context.Context, tx *sql.Tx, run *domain.RunResult) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO delivery_plan (run_id, delivery_date, zone_code, zone_label, customer_ids, customer_count)
	VALUES ($1, $2, $3, $4, $5, $6);
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, g := range run.Schedule.Groups {
		if _, err := stmt.ExecContext(ctx, run.RunID, g.Date, g.Zone.Code(), g.Zone.Label(), g.CustomerIDs, g.Size()); err != nil {
			return fmt.Errorf("insert %s %s: %w", g.Date.Format(domain.DateLayout), g.Zone.Code(), err)
		}
	}
	return nil
}

func saveRoutes(ctx context.Context, tx *sql.Tx, run *domain.RunResult) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO routes (
		run_id, vehicle_id, delivery_date, zone_code, zone_label,
		customer_ids, distance_km, driving_minutes, total_minutes
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range run.Routes {
		b := r.Batch
		if _, err := stmt.ExecContext(ctx, run.RunID, b.VehicleID, b.Date, b.Zone.Code(), b.Zone.Label(),
			r.Tour.CustomerIDs, r.Tour.DistanceKm, r.Time.DrivingMinutes, r.Time.TotalMinutes,
		); err != nil {
			return fmt.Errorf("insert vehicle_id=%s: %w", b.VehicleID, err)
		}
	}
	return nil
}

func saveRejected(ctx context.Context, tx *sql.Tx, run *domain.RunResult) error {
	for _, r := range run.Rejected {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO rejected_customers (run_id, customer_id, lat, lon, reason)
		VALUES ($1, $2, $3, $4, $5);
		`, run.RunID, r.CustomerID, r.Lat, r.Lon, r.Reason); err != nil {
			return fmt.Errorf("insert customer_id=%s: %w", r.CustomerID, err)
		}
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"delivery-zone-planner/internal/domain"
	platformdb "delivery-zone-planner/internal/platform/db"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS forecasts (
		customer_id TEXT NOT NULL,
		delivery_date DATE NOT NULL,
		PRIMARY KEY (customer_id, delivery_date)
	);`,
	`CREATE TABLE IF NOT EXISTS planning_runs (
		run_id TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		clusters INTEGER NOT NULL,
		noise_points INTEGER NOT NULL,
		reassigned INTEGER NOT NULL,
		silhouette DOUBLE PRECISION,
		rejected INTEGER NOT NULL,
		excluded_groups INTEGER NOT NULL,
		rescheduled_orders INTEGER NOT NULL,
		dropped_orders INTEGER NOT NULL,
		vehicles INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS cluster_assignments (
		run_id TEXT NOT NULL REFERENCES planning_runs(run_id) ON DELETE CASCADE,
		customer_id TEXT NOT NULL,
		cluster_raw INTEGER NOT NULL,
		cluster_final TEXT NOT NULL,
		zone_label TEXT NOT NULL,
		reassigned BOOLEAN NOT NULL,
		PRIMARY KEY (run_id, customer_id)
	);`,
	`CREATE TABLE IF NOT EXISTS delivery_plan (
		run_id TEXT NOT NULL REFERENCES planning_runs(run_id) ON DELETE CASCADE,
		delivery_date DATE NOT NULL,
		zone_code TEXT NOT NULL,
		zone_label TEXT NOT NULL,
		customer_ids TEXT[] NOT NULL,
		customer_count INTEGER NOT NULL,
		PRIMARY KEY (run_id, delivery_date, zone_code)
	);`,
	`CREATE TABLE IF NOT EXISTS routes (
		run_id TEXT NOT NULL REFERENCES planning_runs(run_id) ON DELETE CASCADE,
		vehicle_id TEXT NOT NULL,
		delivery_date DATE NOT NULL,
		zone_code TEXT NOT NULL,
		zone_label TEXT NOT NULL,
		customer_ids TEXT[] NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		driving_minutes INTEGER NOT NULL,
		total_minutes INTEGER NOT NULL,
		PRIMARY KEY (run_id, vehicle_id)
	);`,
	`CREATE TABLE IF NOT EXISTS rejected_customers (
		run_id TEXT NOT NULL REFERENCES planning_runs(run_id) ON DELETE CASCADE,
		customer_id TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		reason TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS distance_cache (
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_km DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (origin, destination)
	);`,
	`CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		geocoded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_routes_date ON routes(run_id, delivery_date);`,
}

// InitSchema creates every table idempotently.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	err := platformdb.InTx(ctx, db, func(tx *sql.Tx) error {
		for i, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("exec statement #%d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	return nil
}

type CustomerSeed struct {
	CustomerID string  `json:"customer_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type ForecastSeed struct {
	CustomerID    string   `json:"customer_id"`
	ForecastDates []string `json:"forecast_dates"`
}

type Seed struct {
	Customers []CustomerSeed `json:"customers"`
	Forecasts []ForecastSeed `json:"forecasts"`
}

// ParseSeed checks a seed document structurally. Coordinates are not
// range-checked here; out-of-area customers are rejected by the planner.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	for i, c := range seed.Customers {
		if strings.TrimSpace(c.CustomerID) == "" {
			return nil, fmt.Errorf("parse seed: customer at index %d: %w", i, domain.ErrEmptyCustomerID)
		}
	}
	for i, f := range seed.Forecasts {
		if strings.TrimSpace(f.CustomerID) == "" {
			return nil, fmt.Errorf("parse seed: forecast at index %d: %w", i, domain.ErrEmptyCustomerID)
		}
		for _, d := range f.ForecastDates {
			if _, err := time.Parse(domain.DateLayout, d); err != nil {
				return nil, fmt.Errorf("parse seed: forecast %q: bad date %q: %w", f.CustomerID, d, domain.ErrMalformedInput)
			}
		}
	}

	return &seed, nil
}

// SeedFromJSON loads customers and forecasts from a seed file, replacing
// rows with the same keys.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: read %q: %w", jsonPath, err)
	}

	seed, err := ParseSeed(data)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	custStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO customers (customer_id, lat, lon)
	VALUES ($1, $2, $3)
	ON CONFLICT (customer_id) DO UPDATE
	SET lat = EXCLUDED.lat, lon = EXCLUDED.lon;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare customers: %w", err)
	}
	defer custStmt.Close()

	for _, c := range seed.Customers {
		if _, err := custStmt.ExecContext(ctx, strings.TrimSpace(c.CustomerID), c.Latitude, c.Longitude); err != nil {
			return fmt.Errorf("seed: insert customer_id=%s: %w", c.CustomerID, err)
		}
	}

	fcStmt, err := tx.PrepareContext(ctx, `
	INSERT INTO forecasts (customer_id, delivery_date)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		return fmt.Errorf("seed: prepare forecasts: %w", err)
	}
	defer fcStmt.Close()

	for _, f := range seed.Forecasts {
		for _, d := range f.ForecastDates {
			if _, err := fcStmt.ExecContext(ctx, strings.TrimSpace(f.CustomerID), d); err != nil {
				return fmt.Errorf("seed: insert forecast customer_id=%s date=%s: %w", f.CustomerID, d, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"delivery-zone-planner/internal/adapters/cache"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/db"
	"delivery-zone-planner/internal/ports"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB connects to TEST_DATABASE_URL and resets every table.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(ctx, conn))
	_, err = conn.ExecContext(ctx, `TRUNCATE customers, forecasts, planning_runs, distance_cache, geocode_cache CASCADE;`)
	require.NoError(t, err)

	return conn
}

func TestSeedAndListCustomers(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"customers": [
			{"customer_id": "C002", "latitude": 40.70, "longitude": 15.95},
			{"customer_id": "C001", "latitude": 40.65, "longitude": 15.88}
		],
		"forecasts": [
			{"customer_id": "C001", "forecast_dates": ["2025-03-18", "2025-03-04"]},
			{"customer_id": "C002", "forecast_dates": ["2025-03-04"]}
		]
	}`), 0o600))

	require.NoError(t, SeedFromJSON(ctx, conn, path))
	// Seeding twice is harmless.
	require.NoError(t, SeedFromJSON(ctx, conn, path))

	repo := NewPostgresCustomerRepository(conn)

	customers, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "C001", customers[0].ID)
	assert.InDelta(t, 40.65, customers[0].Lat, 1e-9)

	forecasts, err := repo.ListForecasts(ctx)
	require.NoError(t, err)
	require.Len(t, forecasts, 2)
	assert.Equal(t, "C001", forecasts[0].CustomerID)
	require.Len(t, forecasts[0].Dates, 2)
	assert.Equal(t, time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), forecasts[0].Dates[0])
}

func TestSaveRun(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	zone := domain.Sub(0, 2)
	run := &domain.RunResult{
		RunID: uuid.NewString(),
		Assignments: []domain.RepairedAssignment{{
			ClusterAssignment: domain.ClusterAssignment{CustomerID: "C001", Raw: 0, Zone: zone},
			Final:             zone,
		}},
		Schedule: domain.Schedule{Groups: []domain.DemandGroup{
			{Date: day, Zone: zone, CustomerIDs: []string{"C001", "C002", "C003"}},
		}},
		Routes: []domain.RoutePlan{{
			Batch: domain.VehicleBatch{VehicleID: "V2025-03-04_C0_2_N1", Date: day, Zone: zone, CustomerIDs: []string{"C001", "C002", "C003"}},
			Tour:  domain.Tour{CustomerIDs: []string{"C002", "C001", "C003"}, DistanceKm: 12.5},
			Time:  domain.RouteTimeEstimate{DrivingMinutes: 19, TotalMinutes: 49},
		}},
		Rejected:    []domain.RejectedRecord{{CustomerID: "C999", Lat: 51.5, Lon: -0.1, Reason: "outside"}},
		Diagnostics: domain.RunDiagnostics{Clusters: 1, Vehicles: 1, Rejected: 1},
	}

	require.NoError(t, NewPostgresPlanRepository(conn).SaveRun(ctx, run))

	var label string
	var ids []string
	row := conn.QueryRowContext(ctx, `SELECT zone_label, customer_ids FROM routes WHERE run_id = $1`, run.RunID)
	require.NoError(t, row.Scan(&label, pgtype.NewMap().SQLScanner(&ids)))
	assert.Equal(t, "Zone A3", label)
	assert.Equal(t, []string{"C002", "C001", "C003"}, ids)

	var silhouette sql.NullFloat64
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT silhouette FROM planning_runs WHERE run_id = $1`, run.RunID).Scan(&silhouette))
	assert.False(t, silhouette.Valid)

	// Run ids are unique.
	assert.Error(t, NewPostgresPlanRepository(conn).SaveRun(ctx, run))
}

func TestSQLCaches(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()

	origin := domain.Coordinates{Lat: 40.656361, Lon: 15.880113}
	dest := domain.Coordinates{Lat: 40.64, Lon: 15.80}

	dc := cache.NewSQLDistanceCache(conn)
	require.NoError(t, dc.PutMany(ctx, origin, map[domain.Coordinates]ports.DistanceResult{dest: {DistanceKm: 6.8}}))
	hits, err := dc.GetMany(ctx, origin, []domain.Coordinates{dest, origin})
	require.NoError(t, err)
	assert.Equal(t, map[domain.Coordinates]ports.DistanceResult{dest: {DistanceKm: 6.8}}, hits)

	gc := cache.NewSQLGeocodeCache(conn)
	require.NoError(t, gc.PutMany(ctx, map[string]domain.Coordinates{"Via Roma 1, Matera": origin}))
	coords, err := gc.GetMany(ctx, []string{"Via Roma 1, Matera", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"Via Roma 1, Matera": origin}, coords)
}

package main

import (
	"context"
	"delivery-zone-planner/internal/adapters/repositories"
	"delivery-zone-planner/internal/bootstrap"
	"delivery-zone-planner/internal/config"
	"delivery-zone-planner/internal/platform/metrics"
	"delivery-zone-planner/internal/platform/obs"
	"delivery-zone-planner/internal/services"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main runs one planning pass over the customers stored in PostgreSQL and
// writes the assignment, delivery plan and route tables back.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	err := run(ctx)

	if gateway := config.Get("PUSHGATEWAY_URL", ""); gateway != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if perr := metrics.Push(pushCtx, gateway, "delivery_zone_planner"); perr != nil {
			log.Printf("metrics: %v", perr)
		}
	}

	if err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	infra, err := bootstrap.Open(ctx)
	if err != nil {
		return err
	}
	defer infra.Close()

	if err := infra.RequireDB(); err != nil {
		return err
	}

	depot, err := infra.Depot(ctx)
	if err != nil {
		return err
	}
	if depot == nil {
		return errors.New("depot is required: set DEPOT_LAT/DEPOT_LON or DEPOT_ADDRESS")
	}

	provider, err := infra.DistanceProvider()
	if err != nil {
		return err
	}

	ctx = obs.WithRunID(ctx, "")
	planner := services.NewPlanner(provider, cfg.Options())

	result, err := planner.RunFromRepository(ctx, repositories.NewPostgresCustomerRepository(infra.DB), *depot)
	if err != nil {
		return err
	}

	if err := repositories.NewPostgresPlanRepository(infra.DB).SaveRun(ctx, result); err != nil {
		return err
	}

	d := result.Diagnostics
	log.Printf("run complete: run_id=%s clusters=%d noise=%d reassigned=%d rejected=%d vehicles=%d rescheduled=%d dropped=%d",
		result.RunID, d.Clusters, d.NoisePoints, d.Reassigned, d.Rejected, d.Vehicles, d.RescheduledOrders, d.DroppedOrders)
	for _, day := range result.Daily {
		log.Printf("day %s: zones=%d customers=%d vehicles=%d km=%.2f minutes=%d",
			day.Date.Format("2006-01-02"), day.ZonesServed, day.Customers, day.Vehicles, day.DistanceKm, day.TotalMinutes)
	}

	return nil
}

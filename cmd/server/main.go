package main

import (
	"context"
	"delivery-zone-planner/internal/adapters/repositories"
	"delivery-zone-planner/internal/api"
	"delivery-zone-planner/internal/bootstrap"
	"delivery-zone-planner/internal/config"
	"delivery-zone-planner/internal/services"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

// main is the application composition root.
// It wires concrete adapters (PostgreSQL, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	infra, err := bootstrap.Open(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer infra.Close()

	provider, err := infra.DistanceProvider()
	if err != nil {
		log.Fatal(err)
	}

	depot, err := infra.Depot(ctx)
	if err != nil {
		log.Fatal(err)
	}

	deps := api.Deps{
		Planner:      services.NewPlanner(provider, cfg.Options()),
		Geocoder:     infra.Geocoder(),
		DefaultDepot: depot,
		HealthChecks: infra.HealthChecks(),
	}
	if infra.DB != nil {
		deps.Customers = repositories.NewPostgresCustomerRepository(infra.DB)
		deps.Plans = repositories.NewPostgresPlanRepository(infra.DB)
	}

	port := config.Get("PORT", "8080")

	// Timeouts are tuned for cold-cache route planning (external API latency).
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s database=%t redis=%t ors=%t",
		port, infra.DB != nil, infra.Redis != nil, infra.ORS != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

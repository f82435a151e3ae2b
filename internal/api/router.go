package api

import (
	"context"
	"delivery-zone-planner/internal/api/handlers"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/metrics"
	"delivery-zone-planner/internal/ports"
	"delivery-zone-planner/internal/services"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators of the HTTP API. Everything except Planner is optional.
type Deps struct {
	Planner      *services.Planner
	Customers    ports.CustomerRepository
	Plans        ports.PlanRepository
	Geocoder     ports.Geocoder
	DefaultDepot *domain.Coordinates
	// Named dependency probes reported by /health.
	HealthChecks map[string]func(context.Context) error
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	metrics.Register()

	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{Checks: d.HealthChecks}
	planHandler := &handlers.PlanHandler{
		Planner:      d.Planner,
		Repo:         d.Customers,
		Plans:        d.Plans,
		Geocoder:     d.Geocoder,
		DefaultDepot: d.DefaultDepot,
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/plans", planHandler.Plan)

	if d.Customers != nil {
		customerHandler := &handlers.CustomerHandler{Repo: d.Customers}
		mux.HandleFunc("/customers", customerHandler.List)
	}

	return loggingMiddleware(mux)
}

package handlers

import (
	"context"
	"delivery-zone-planner/internal/api/dto"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/ports"
	"delivery-zone-planner/internal/services"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

type PlanHandler struct {
	Planner *services.Planner
	// Optional: source of customers and forecasts when the request omits them.
	Repo ports.CustomerRepository
	// Optional: destination of runs submitted with persist=true.
	Plans ports.PlanRepository
	// Optional: resolves a depot given by address.
	Geocoder     ports.Geocoder
	DefaultDepot *domain.Coordinates
}

// badRequest marks failures caused by the request body.
type badRequest struct{ msg string }

func (e *badRequest) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequest{msg: fmt.Sprintf(format, args...)}
}

// Plan runs the full planning pipeline over the submitted (or stored)
// customers and returns the assignment, delivery plan and route tables.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.run(r.Context(), req)
	if err != nil {
		var br *badRequest
		switch {
		case errors.As(err, &br):
			writeError(w, r, http.StatusBadRequest, br.msg)
		case errors.Is(err, domain.ErrMalformedInput):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			log.Printf("plan run failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(run))
}

func (h *PlanHandler) run(ctx context.Context, req dto.PlanRequest) (*domain.RunResult, error) {
	if req.Persist && h.Plans == nil {
		return nil, badRequestf("persist is not available: no database configured")
	}

	depot, err := h.resolveDepot(ctx, req.Depot)
	if err != nil {
		return nil, err
	}

	var run *domain.RunResult
	if req.Customers == nil {
		if h.Repo == nil {
			return nil, badRequestf("customers are required")
		}
		if run, err = h.Planner.RunFromRepository(ctx, h.Repo, depot); err != nil {
			return nil, err
		}
	} else {
		in, err := toInput(req, depot)
		if err != nil {
			return nil, err
		}
		if run, err = h.Planner.Run(ctx, in); err != nil {
			return nil, err
		}
	}

	if req.Persist {
		if err := h.Plans.SaveRun(ctx, run); err != nil {
			return nil, err
		}
	}
	return run, nil
}

func (h *PlanHandler) resolveDepot(ctx context.Context, d *dto.DepotRequest) (domain.Coordinates, error) {
	switch {
	case d == nil:
		if h.DefaultDepot == nil {
			return domain.Coordinates{}, badRequestf("depot is required")
		}
		return *h.DefaultDepot, nil

	case d.Latitude != nil && d.Longitude != nil:
		return domain.Coordinates{Lat: *d.Latitude, Lon: *d.Longitude}, nil

	case strings.TrimSpace(d.Address) != "":
		if h.Geocoder == nil {
			return domain.Coordinates{}, badRequestf("depot address lookup is not available")
		}
		c, err := h.Geocoder.Geocode(ctx, d.Address)
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("resolve depot: %w", err)
		}
		return c, nil
	}

	return domain.Coordinates{}, badRequestf("depot needs latitude and longitude or an address")
}

func toInput(req dto.PlanRequest, depot domain.Coordinates) (services.Input, error) {
	in := services.Input{
		Customers: make([]domain.CustomerRecord, 0, len(req.Customers)),
		Forecasts: make([]domain.Forecast, 0, len(req.Forecasts)),
		Depot:     depot,
	}

	for _, c := range req.Customers {
		in.Customers = append(in.Customers, domain.CustomerRecord{ID: c.CustomerID, Lat: c.Latitude, Lon: c.Longitude})
	}

	for _, f := range req.Forecasts {
		dates := make([]time.Time, 0, len(f.ForecastDates))
		for _, s := range f.ForecastDates {
			d, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
			if err != nil {
				return services.Input{}, badRequestf("forecast for %q: invalid date %q, want YYYY-MM-DD", f.CustomerID, s)
			}
			dates = append(dates, d)
		}
		in.Forecasts = append(in.Forecasts, domain.Forecast{CustomerID: f.CustomerID, Dates: dates})
	}

	return in, nil
}

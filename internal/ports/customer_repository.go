package ports

import (
	"context"
	"delivery-zone-planner/internal/domain"
)

// Port: a boundary for retrieving planning input from a data source.
type CustomerRepository interface {
	// Retrieve all geocoded customers, unvalidated.
	ListCustomers(ctx context.Context) ([]domain.CustomerRecord, error)
	// Retrieve forecast delivery dates grouped per customer.
	ListForecasts(ctx context.Context) ([]domain.Forecast, error)
}

package repositories

import (
	"context"
	"database/sql"
	"delivery-zone-planner/internal/domain"
	"errors"
	"fmt"
	"time"
)

// PostgreSQL-backed implementation of the CustomerRepository port.
type PostgresCustomerRepository struct{ DB *sql.DB }

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{DB: db}
}

// Return all customers ordered by id.
func (p *PostgresCustomerRepository) ListCustomers(ctx context.Context) ([]domain.CustomerRecord, error) {
	if p.DB == nil {
		return nil, errors.New("postgres customer repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `
	SELECT customer_id, lat, lon
	FROM customers
	ORDER BY customer_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list customers: query customers table: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.CustomerRecord, 0, 256)
	for rows.Next() {
		var c domain.CustomerRecord
		if err := rows.Scan(&c.ID, &c.Lat, &c.Lon); err != nil {
			return nil, fmt.Errorf("list customers: scan row: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: row iteration: %w", err)
	}

	return customers, nil
}

// Return forecast dates grouped per customer, both in ascending order.
func (p *PostgresCustomerRepository) ListForecasts(ctx context.Context) ([]domain.Forecast, error) {
	if p.DB == nil {
		return nil, errors.New("postgres customer repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, `
	SELECT customer_id, delivery_date
	FROM forecasts
	ORDER BY customer_id, delivery_date;
	`)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: query forecasts table: %w", err)
	}
	defer rows.Close()

	var out []domain.Forecast
	for rows.Next() {
		var id string
		var day time.Time
		if err := rows.Scan(&id, &day); err != nil {
			return nil, fmt.Errorf("list forecasts: scan row: %w", err)
		}

		if n := len(out); n == 0 || out[n-1].CustomerID != id {
			out = append(out, domain.Forecast{CustomerID: id})
		}
		last := &out[len(out)-1]
		last.Dates = append(last.Dates, domain.DateOnly(day))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list forecasts: row iteration: %w", err)
	}

	return out, nil
}

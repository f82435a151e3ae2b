package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks a structurally broken input table. It aborts the run.
	ErrMalformedInput = errors.New("malformed input")

	ErrEmptyCustomerID   = fmt.Errorf("%w: empty customer id", ErrMalformedInput)
	ErrDuplicateCustomer = fmt.Errorf("%w: duplicate customer id", ErrMalformedInput)
)

// InvalidCoordinateError reports a customer outside the configured bounding box.
type InvalidCoordinateError struct {
	CustomerID string
	Lat        float64
	Lon        float64
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate: customer %q at (%.6f, %.6f) is outside the service area", e.CustomerID, e.Lat, e.Lon)
}

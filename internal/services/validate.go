package services

import (
	"delivery-zone-planner/internal/domain"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ValidateCustomers turns raw geocoded rows into CustomerPoints.
// Rows outside box (or with non-finite numbers) are returned as rejected and
// never fail the call. Empty or repeated ids fail it with ErrMalformedInput.
func ValidateCustomers(
	records []domain.CustomerRecord,
	box domain.BoundingBox,
) ([]domain.CustomerPoint, []domain.RejectedRecord, error) {
	valid := make([]domain.CustomerPoint, 0, len(records))
	var rejected []domain.RejectedRecord
	seen := make(map[string]struct{}, len(records))

	for i, r := range records {
		id := strings.TrimSpace(r.ID)
		if _, dup := seen[id]; dup && id != "" {
			return nil, nil, fmt.Errorf("validate customers: row %d %q: %w", i+1, id, domain.ErrDuplicateCustomer)
		}
		seen[id] = struct{}{}

		pt, err := domain.NewCustomerPoint(id, r.Lat, r.Lon, box)
		if err != nil {
			var invalid *domain.InvalidCoordinateError
			if errors.As(err, &invalid) {
				rejected = append(rejected, domain.RejectedRecord{
					CustomerID: id,
					Lat:        r.Lat,
					Lon:        r.Lon,
					Reason:     invalid.Error(),
				})
				continue
			}
			return nil, nil, fmt.Errorf("validate customers: row %d: %w", i+1, err)
		}
		valid = append(valid, pt)
	}

	if len(rejected) > 0 {
		log.Printf("validate: accepted=%d rejected=%d", len(valid), len(rejected))
	}
	return valid, rejected, nil
}

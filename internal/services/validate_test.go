package services

import (
	"delivery-zone-planner/internal/domain"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var serviceArea = domain.BoundingBox{MinLat: 36, MaxLat: 47, MinLon: 6, MaxLon: 18}

func TestValidateCustomers(t *testing.T) {
	records := []domain.CustomerRecord{
		{ID: "C1", Lat: 40.66, Lon: 16.60},
		{ID: "LON", Lat: 51.50, Lon: -0.12},
		{ID: " C2 ", Lat: 41.11, Lon: 16.87},
		{ID: "NAN", Lat: math.NaN(), Lon: 16},
	}

	valid, rejected, err := ValidateCustomers(records, serviceArea)
	require.NoError(t, err)

	require.Len(t, valid, 2)
	assert.Equal(t, "C1", valid[0].ID)
	assert.Equal(t, "C2", valid[1].ID)

	require.Len(t, rejected, 2)
	assert.Equal(t, "LON", rejected[0].CustomerID)
	assert.Contains(t, rejected[0].Reason, "outside the service area")
	assert.Equal(t, "NAN", rejected[1].CustomerID)
}

func TestValidateCustomersStructuralErrors(t *testing.T) {
	_, _, err := ValidateCustomers([]domain.CustomerRecord{{ID: "", Lat: 40, Lon: 15}}, serviceArea)
	assert.True(t, errors.Is(err, domain.ErrEmptyCustomerID))

	_, _, err = ValidateCustomers([]domain.CustomerRecord{
		{ID: "C1", Lat: 40, Lon: 15},
		{ID: "C1 ", Lat: 41, Lon: 15},
	}, serviceArea)
	assert.True(t, errors.Is(err, domain.ErrDuplicateCustomer))
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))
}

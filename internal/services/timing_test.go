package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateRouteTime(t *testing.T) {
	tests := []struct {
		km          float64
		stops       int
		wantDriving int
		wantTotal   int
	}{
		{40, 4, 60, 100},
		{0, 0, 0, 0},
		{10, 3, 15, 45},
		{12.34, 5, 19, 69},
	}
	for _, tt := range tests {
		got, err := EstimateRouteTime(tt.km, tt.stops, DefaultTimeParams())
		require.NoError(t, err)
		assert.Equal(t, tt.wantDriving, got.DrivingMinutes, "km=%v", tt.km)
		assert.Equal(t, tt.wantTotal, got.TotalMinutes, "km=%v", tt.km)
	}
}

func TestEstimateRouteTimeErrors(t *testing.T) {
	_, err := EstimateRouteTime(10, 1, TimeParams{SpeedKmh: 0, ServiceMinutes: 10})
	assert.Error(t, err)

	_, err = EstimateRouteTime(-1, 1, DefaultTimeParams())
	assert.Error(t, err)
}

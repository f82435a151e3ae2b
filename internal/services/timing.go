package services

import (
	"delivery-zone-planner/internal/domain"
	"errors"
	"math"
)

type TimeParams struct {
	SpeedKmh       float64 `yaml:"speed_kmh"`
	ServiceMinutes float64 `yaml:"service_minutes"`
}

func DefaultTimeParams() TimeParams {
	return TimeParams{SpeedKmh: 40, ServiceMinutes: 10}
}

// EstimateRouteTime converts a tour length into driving and total minutes.
// Both figures are rounded half to even.
func EstimateRouteTime(distanceKm float64, stops int, p TimeParams) (domain.RouteTimeEstimate, error) {
	if p.SpeedKmh <= 0 {
		return domain.RouteTimeEstimate{}, errors.New("estimate route time: speed must be positive")
	}
	if stops < 0 || distanceKm < 0 {
		return domain.RouteTimeEstimate{}, errors.New("estimate route time: distance and stops must be non-negative")
	}

	driving := distanceKm / p.SpeedKmh * 60
	total := driving + float64(stops)*p.ServiceMinutes

	return domain.RouteTimeEstimate{
		DrivingMinutes: int(math.RoundToEven(driving)),
		TotalMinutes:   int(math.RoundToEven(total)),
	}, nil
}

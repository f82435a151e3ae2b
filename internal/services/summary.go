package services

import (
	"delivery-zone-planner/internal/domain"
)

// SummarizeDays aggregates the route table per delivery date, in date order.
// routes must already be ordered by date.
func SummarizeDays(routes []domain.RoutePlan) []domain.DailySummary {
	var out []domain.DailySummary
	var zones map[domain.Zone]struct{}

	for _, r := range routes {
		if len(out) == 0 || !out[len(out)-1].Date.Equal(r.Batch.Date) {
			out = append(out, domain.DailySummary{Date: r.Batch.Date})
			zones = map[domain.Zone]struct{}{}
		}

		day := &out[len(out)-1]
		if _, ok := zones[r.Batch.Zone]; !ok {
			zones[r.Batch.Zone] = struct{}{}
			day.ZonesServed++
		}
		day.Customers += len(r.Tour.CustomerIDs)
		day.Vehicles++
		day.DistanceKm = roundKm(day.DistanceKm + r.Tour.DistanceKm)
		day.TotalMinutes += r.Time.TotalMinutes
	}
	return out
}

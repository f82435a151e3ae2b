package services

import (
	"delivery-zone-planner/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func route(d int, z domain.Zone, km float64, minutes int, customers ...string) domain.RoutePlan {
	return domain.RoutePlan{
		Batch: domain.VehicleBatch{Date: day(d), Zone: z, CustomerIDs: customers},
		Tour:  domain.Tour{CustomerIDs: customers, DistanceKm: km},
		Time:  domain.RouteTimeEstimate{TotalMinutes: minutes},
	}
}

func TestSummarizeDays(t *testing.T) {
	routes := []domain.RoutePlan{
		route(3, domain.Flat(0), 10.1, 60, "a", "b", "c"),
		route(3, domain.Flat(0), 12.2, 70, "d", "e", "f"),
		route(3, domain.Sub(1, 0), 5.05, 40, "g", "h", "i"),
		route(4, domain.Flat(0), 7, 50, "a", "b", "c", "d"),
	}

	got := SummarizeDays(routes)
	require.Len(t, got, 2)

	assert.Equal(t, domain.DailySummary{
		Date: day(3), ZonesServed: 2, Customers: 9, Vehicles: 3, DistanceKm: 27.35, TotalMinutes: 170,
	}, got[0])
	assert.Equal(t, domain.DailySummary{
		Date: day(4), ZonesServed: 1, Customers: 4, Vehicles: 1, DistanceKm: 7, TotalMinutes: 50,
	}, got[1])
}

func TestSummarizeDaysEmpty(t *testing.T) {
	assert.Empty(t, SummarizeDays(nil))
}

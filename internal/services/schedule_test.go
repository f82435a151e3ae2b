package services

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }

func forecast(id string, days ...int) domain.Forecast {
	f := domain.Forecast{CustomerID: id}
	for _, d := range days {
		f.Dates = append(f.Dates, day(d))
	}
	return f
}

var (
	zoneA = domain.Flat(0)
	zoneB = domain.Flat(1)
)

func scheduleZones() map[string]domain.Zone {
	return map[string]domain.Zone{
		"c1": zoneA, "c2": zoneA, "c3": zoneA, "c4": zoneA, "c5": zoneA,
		"b1": zoneB, "b2": zoneB,
	}
}

func TestBuildSchedule(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("c1", 3),
		forecast("c2", 3),
		forecast("c3", 3),
		forecast("c4", 5),  // orphan, 2 days from a valid group
		forecast("c5", 20), // orphan, 17 days away
		forecast("b1", 3),
		forecast("b2", 3),
		forecast("ghost", 3),
	}

	s, err := BuildSchedule(context.Background(), forecasts, scheduleZones(), DefaultScheduleParams())
	require.NoError(t, err)

	require.Len(t, s.Groups, 1)
	assert.Equal(t, day(3), s.Groups[0].Date)
	assert.Equal(t, zoneA, s.Groups[0].Zone)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, s.Groups[0].CustomerIDs)

	assert.Len(t, s.Excluded, 3)

	require.Len(t, s.Rescheduled, 1)
	assert.Equal(t, "c4", s.Rescheduled[0].CustomerID)
	assert.Equal(t, day(5), s.Rescheduled[0].OriginalDate)
	require.NotNil(t, s.Rescheduled[0].NewDate)
	assert.Equal(t, day(3), *s.Rescheduled[0].NewDate)

	dropped := map[string]bool{}
	for _, o := range s.Dropped {
		dropped[o.CustomerID] = true
		assert.Nil(t, o.NewDate)
	}
	assert.Equal(t, map[string]bool{"b1": true, "b2": true, "c5": true}, dropped)

	assert.Equal(t, []string{"ghost"}, s.Unzoned)
}

func TestBuildScheduleNearestPolicyIgnoresTolerance(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("c1", 3), forecast("c2", 3), forecast("c3", 3),
		forecast("c5", 20),
	}
	p := DefaultScheduleParams()
	p.OrphanPolicy = OrphanNearest

	s, err := BuildSchedule(context.Background(), forecasts, scheduleZones(), p)
	require.NoError(t, err)

	require.Len(t, s.Groups, 1)
	assert.Equal(t, []string{"c1", "c2", "c3", "c5"}, s.Groups[0].CustomerIDs)
	assert.Empty(t, s.Dropped)
}

func TestBuildScheduleTiePrefersEarlierDate(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("c1", 1, 5), forecast("c2", 1, 5), forecast("c3", 1, 5),
		forecast("c4", 3),
	}

	s, err := BuildSchedule(context.Background(), forecasts, scheduleZones(), DefaultScheduleParams())
	require.NoError(t, err)

	require.Len(t, s.Rescheduled, 1)
	assert.Equal(t, day(1), *s.Rescheduled[0].NewDate)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, s.Groups[0].CustomerIDs)
	assert.Equal(t, []string{"c1", "c2", "c3"}, s.Groups[1].CustomerIDs)
}

func TestBuildScheduleToleranceIsInclusive(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("c1", 3), forecast("c2", 3), forecast("c3", 3),
		forecast("c4", 10), // exactly 7 days
	}

	s, err := BuildSchedule(context.Background(), forecasts, scheduleZones(), DefaultScheduleParams())
	require.NoError(t, err)

	assert.Len(t, s.Rescheduled, 1)
	assert.Empty(t, s.Dropped)
}

func TestBuildScheduleDoesNotDuplicateCustomers(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("c1", 3, 4), forecast("c2", 3), forecast("c3", 3),
	}

	s, err := BuildSchedule(context.Background(), forecasts, scheduleZones(), DefaultScheduleParams())
	require.NoError(t, err)

	require.Len(t, s.Groups, 1)
	assert.Equal(t, []string{"c1", "c2", "c3"}, s.Groups[0].CustomerIDs)
	assert.Len(t, s.Rescheduled, 1)
}

func TestBuildScheduleMergesRepeatedForecastRows(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("c1", 3), forecast("c1", 3), forecast("c2", 3),
		forecast("ghost", 3), forecast("ghost", 4),
	}

	s, err := BuildSchedule(context.Background(), forecasts, scheduleZones(), DefaultScheduleParams())
	require.NoError(t, err)

	assert.Empty(t, s.Groups)
	require.Len(t, s.Excluded, 1)
	assert.Equal(t, []string{"c1", "c2"}, s.Excluded[0].CustomerIDs)
	assert.Equal(t, []string{"ghost"}, s.Unzoned)

	forecasts = append(forecasts, forecast("c3", 3), forecast("c3", 3, 4))
	s, err = BuildSchedule(context.Background(), forecasts, scheduleZones(), DefaultScheduleParams())
	require.NoError(t, err)

	require.Len(t, s.Groups, 1)
	assert.Equal(t, []string{"c1", "c2", "c3"}, s.Groups[0].CustomerIDs)
}

func TestBuildScheduleIsIdempotentOnValidOutput(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("c1", 3, 10), forecast("c2", 3, 10), forecast("c3", 3, 10),
		forecast("c4", 5), forecast("c5", 11),
		forecast("b1", 3), forecast("b2", 3),
	}
	zones := scheduleZones()
	zones["b3"] = zoneB

	first, err := BuildSchedule(context.Background(), append(forecasts, forecast("b3", 3)), zones, DefaultScheduleParams())
	require.NoError(t, err)

	var again []domain.Forecast
	for _, g := range first.Groups {
		for _, id := range g.CustomerIDs {
			again = append(again, domain.Forecast{CustomerID: id, Dates: []time.Time{g.Date}})
		}
	}

	second, err := BuildSchedule(context.Background(), again, zones, DefaultScheduleParams())
	require.NoError(t, err)

	assert.Equal(t, first.Groups, second.Groups)
	assert.Empty(t, second.Excluded)
	assert.Empty(t, second.Rescheduled)
}

func TestBuildScheduleOrdersGroupsByDateThenZone(t *testing.T) {
	forecasts := []domain.Forecast{
		forecast("b1", 3), forecast("b2", 3), forecast("c9", 3),
		forecast("c1", 3, 1), forecast("c2", 3, 1), forecast("c3", 3, 1),
	}
	zones := scheduleZones()
	zones["c9"] = zoneB

	s, err := BuildSchedule(context.Background(), forecasts, zones, DefaultScheduleParams())
	require.NoError(t, err)

	require.Len(t, s.Groups, 3)
	assert.Equal(t, day(1), s.Groups[0].Date)
	assert.Equal(t, zoneA, s.Groups[1].Zone)
	assert.Equal(t, zoneB, s.Groups[2].Zone)
}

func TestBuildScheduleNormalizesTimes(t *testing.T) {
	f := domain.Forecast{CustomerID: "c1", Dates: []time.Time{
		time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC),
		time.Date(2025, 3, 3, 17, 0, 0, 0, time.UTC),
	}}

	s, err := BuildSchedule(context.Background(), []domain.Forecast{f, forecast("c2", 3), forecast("c3", 3)},
		scheduleZones(), DefaultScheduleParams())
	require.NoError(t, err)

	require.Len(t, s.Groups, 1)
	assert.Equal(t, day(3), s.Groups[0].Date)
	assert.Equal(t, 3, s.Groups[0].Size())
}

func TestBuildScheduleErrors(t *testing.T) {
	_, err := BuildSchedule(context.Background(), []domain.Forecast{{CustomerID: " "}}, nil, DefaultScheduleParams())
	assert.True(t, errors.Is(err, domain.ErrMalformedInput))

	p := DefaultScheduleParams()
	p.OrphanPolicy = "retry"
	_, err = BuildSchedule(context.Background(), nil, nil, p)
	assert.Error(t, err)

	p = DefaultScheduleParams()
	p.MinGroupSize = 0
	_, err = BuildSchedule(context.Background(), nil, nil, p)
	assert.Error(t, err)
}

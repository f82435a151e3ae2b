package services

import (
	"context"
	"delivery-zone-planner/internal/domain"
	"delivery-zone-planner/internal/platform/obs"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// OrphanPolicy says what happens to an orphan with no valid group within tolerance.
type OrphanPolicy string

const (
	// OrphanSkip leaves the delivery out of this planning cycle.
	OrphanSkip OrphanPolicy = "skip"
	// OrphanNearest forces the delivery into the closest valid group of its zone,
	// however far the date.
	OrphanNearest OrphanPolicy = "nearest"
)

func (p OrphanPolicy) Valid() bool { return p == OrphanSkip || p == OrphanNearest }

type ScheduleParams struct {
	MinGroupSize  int          `yaml:"min_group_size"`
	ToleranceDays int          `yaml:"tolerance_days"`
	OrphanPolicy  OrphanPolicy `yaml:"orphan_policy"`
}

func DefaultScheduleParams() ScheduleParams {
	return ScheduleParams{
		MinGroupSize:  3,
		ToleranceDays: 7,
		OrphanPolicy:  OrphanSkip,
	}
}

type groupKey struct {
	date time.Time
	zone domain.Zone
}

// BuildSchedule turns forecast dates into (date, zone) demand groups.
//
// Groups smaller than MinGroupSize are dissolved. Each of their deliveries is
// moved to the valid group of the same zone whose date is closest, provided
// the gap is at most ToleranceDays (the earlier date wins a tie). Deliveries
// with no such group are dropped unless the policy is OrphanNearest.
// Customers absent from zones are reported in Unzoned.
func BuildSchedule(
	ctx context.Context,
	forecasts []domain.Forecast,
	zones map[string]domain.Zone,
	p ScheduleParams,
) (_ domain.Schedule, err error) {
	defer obs.Time(ctx, "schedule")(&err)

	if p.MinGroupSize < 1 {
		return domain.Schedule{}, fmt.Errorf("build schedule: min group size must be at least 1, got %d", p.MinGroupSize)
	}
	if !p.OrphanPolicy.Valid() {
		return domain.Schedule{}, fmt.Errorf("build schedule: unknown orphan policy %q", p.OrphanPolicy)
	}

	type delivery struct {
		id  string
		day time.Time
	}

	members := map[groupKey][]string{}
	var unzoned []string
	// A customer may span several forecast rows; each (customer, day) counts once.
	seen := map[delivery]struct{}{}
	for i, f := range forecasts {
		id := strings.TrimSpace(f.CustomerID)
		if id == "" {
			return domain.Schedule{}, fmt.Errorf("build schedule: forecast row %d: %w", i+1, domain.ErrEmptyCustomerID)
		}

		zone, ok := zones[id]
		if !ok {
			if !contains(unzoned, id) {
				unzoned = append(unzoned, id)
			}
			continue
		}

		for _, d := range f.Dates {
			day := domain.DateOnly(d)
			if _, dup := seen[delivery{id, day}]; dup {
				continue
			}
			seen[delivery{id, day}] = struct{}{}

			k := groupKey{date: day, zone: zone}
			members[k] = append(members[k], id)
		}
	}

	keys := sortedKeys(members)

	valid := map[groupKey][]string{}
	byZone := map[domain.Zone][]time.Time{}
	var excluded []domain.DemandGroup
	for _, k := range keys {
		ids := members[k]
		if len(ids) < p.MinGroupSize {
			excluded = append(excluded, domain.DemandGroup{Date: k.date, Zone: k.zone, CustomerIDs: ids})
			continue
		}
		valid[k] = append([]string(nil), ids...)
		// keys are date-ordered, so every date list is ascending.
		byZone[k.zone] = append(byZone[k.zone], k.date)
	}

	var rescheduled, dropped []domain.Orphan
	for _, g := range excluded {
		for _, id := range g.CustomerIDs {
			o := domain.Orphan{CustomerID: id, Zone: g.Zone, OriginalDate: g.Date}

			target, ok := closestDate(byZone[g.Zone], g.Date, p)
			if !ok {
				dropped = append(dropped, o)
				continue
			}

			o.NewDate = &target
			rescheduled = append(rescheduled, o)

			k := groupKey{date: target, zone: g.Zone}
			if !contains(valid[k], id) {
				valid[k] = append(valid[k], id)
			}
		}
	}

	groups := make([]domain.DemandGroup, 0, len(valid))
	for _, k := range sortedKeys(valid) {
		groups = append(groups, domain.DemandGroup{Date: k.date, Zone: k.zone, CustomerIDs: valid[k]})
	}

	if len(dropped) > 0 {
		log.Printf("schedule: dropped=%d orders with no group within %d days", len(dropped), p.ToleranceDays)
	}
	log.Printf("schedule: groups=%d excluded=%d rescheduled=%d dropped=%d unzoned=%d",
		len(groups), len(excluded), len(rescheduled), len(dropped), len(unzoned))

	return domain.Schedule{
		Groups:      groups,
		Excluded:    excluded,
		Rescheduled: rescheduled,
		Dropped:     dropped,
		Unzoned:     unzoned,
	}, nil
}

// closestDate picks from ascending dates the one nearest to day. Strict
// comparison keeps the earlier date on ties.
func closestDate(dates []time.Time, day time.Time, p ScheduleParams) (time.Time, bool) {
	var best time.Time
	bestDelta := -1
	for _, d := range dates {
		if d.Equal(day) {
			continue
		}
		delta := daysBetween(d, day)
		if p.OrphanPolicy == OrphanSkip && delta > p.ToleranceDays {
			continue
		}
		if bestDelta < 0 || delta < bestDelta {
			bestDelta = delta
			best = d
		}
	}
	return best, bestDelta >= 0
}

func daysBetween(a, b time.Time) int {
	d := int(a.Sub(b).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}

func sortedKeys(m map[groupKey][]string) []groupKey {
	keys := make([]groupKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].zone.Code() < keys[j].zone.Code()
	})
	return keys
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

package domain

import "time"

// Forecast lists the predicted delivery dates of one customer.
type Forecast struct {
	CustomerID string
	Dates      []time.Time
}

// DemandGroup holds the customers due on Date within Zone, in grouping order.
type DemandGroup struct {
	Date        time.Time
	Zone        Zone
	CustomerIDs []string
}

func (g DemandGroup) Size() int { return len(g.CustomerIDs) }

// Orphan is a (customer, date) pair whose original group was undersized.
type Orphan struct {
	CustomerID   string
	Zone         Zone
	OriginalDate time.Time
	NewDate      *time.Time
}

// Schedule is the outcome of demand grouping and orphan rescheduling.
type Schedule struct {
	Groups      []DemandGroup
	Excluded    []DemandGroup
	Rescheduled []Orphan
	Dropped     []Orphan
	// Customers with forecasts but no zone, typically rejected for their coordinates.
	Unzoned []string
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const DateLayout = "2006-01-02"

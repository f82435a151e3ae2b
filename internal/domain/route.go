package domain

import "time"

// VehicleBatch is the capacity-bounded share of a DemandGroup given to one vehicle.
type VehicleBatch struct {
	VehicleID   string
	Date        time.Time
	Zone        Zone
	Index       int
	CustomerIDs []string
}

// Tour is the visiting order of one vehicle starting from the depot.
// It is immutable planning data and contains no side effects.
type Tour struct {
	Depot       Coordinates
	CustomerIDs []string
	DistanceKm  float64
}

type RouteTimeEstimate struct {
	DrivingMinutes int
	TotalMinutes   int
}

// RoutePlan is one row of the route table.
type RoutePlan struct {
	Batch VehicleBatch
	Tour  Tour
	Time  RouteTimeEstimate
}

// DailySummary aggregates the route table for one delivery date.
type DailySummary struct {
	Date         time.Time
	ZonesServed  int
	Customers    int
	Vehicles     int
	DistanceKm   float64
	TotalMinutes int
}

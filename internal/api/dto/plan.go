package dto

// PlanRequest is the body of POST /plans. When Customers is omitted the
// server plans over the customers and forecasts stored in its database.
type PlanRequest struct {
	Customers []CustomerRequest `json:"customers"`
	Forecasts []ForecastRequest `json:"forecasts"`
	Depot     *DepotRequest     `json:"depot"`
	// Persist writes the run's output tables to the database.
	Persist bool `json:"persist"`
}

type CustomerRequest struct {
	CustomerID string  `json:"customer_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type ForecastRequest struct {
	CustomerID    string   `json:"customer_id"`
	ForecastDates []string `json:"forecast_dates"`
}

// DepotRequest takes either coordinates or a postal address.
type DepotRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Address   string   `json:"address"`
}

type AssignmentResponse struct {
	CustomerID      string   `json:"customer_id"`
	Cluster         string   `json:"cluster"`
	Zone            string   `json:"zone"`
	FinalZone       string   `json:"final_zone"`
	ZoneLabel       string   `json:"zone_label"`
	Reassigned      bool     `json:"reassigned"`
	LocalDensity    *int     `json:"local_density,omitempty"`
	NearestDistance *float64 `json:"nearest_distance,omitempty"`
}

type DeliveryGroupResponse struct {
	Date        string   `json:"date"`
	Zone        string   `json:"zone"`
	CustomerIDs []string `json:"customer_ids"`
}

type OrphanResponse struct {
	CustomerID   string  `json:"customer_id"`
	Zone         string  `json:"zone"`
	OriginalDate string  `json:"original_date"`
	NewDate      *string `json:"new_date"`
}

type RouteResponse struct {
	VehicleID      string   `json:"vehicle_id"`
	Date           string   `json:"date"`
	Zone           string   `json:"zone"`
	Stops          []string `json:"stops"`
	DistanceKm     float64  `json:"distance_km"`
	DrivingMinutes int      `json:"driving_minutes"`
	TotalMinutes   int      `json:"total_minutes"`
}

type DailySummaryResponse struct {
	Date         string  `json:"date"`
	ZonesServed  int     `json:"zones_served"`
	Customers    int     `json:"customers"`
	Vehicles     int     `json:"vehicles"`
	DistanceKm   float64 `json:"distance_km"`
	TotalMinutes int     `json:"total_minutes"`
}

type RejectedResponse struct {
	CustomerID string  `json:"customer_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Reason     string  `json:"reason"`
}

type DiagnosticsResponse struct {
	Rejected          int      `json:"rejected"`
	Clusters          int      `json:"clusters"`
	NoisePoints       int      `json:"noise_points"`
	Reassigned        int      `json:"reassigned"`
	Silhouette        *float64 `json:"silhouette"`
	ExcludedGroups    int      `json:"excluded_groups"`
	RescheduledOrders int      `json:"rescheduled_orders"`
	DroppedOrders     int      `json:"dropped_orders"`
	Vehicles          int      `json:"vehicles"`
	Unzoned           []string `json:"unzoned"`
}

type PlanResponse struct {
	RunID        string                  `json:"run_id"`
	Assignments  []AssignmentResponse    `json:"assignments"`
	DeliveryPlan []DeliveryGroupResponse `json:"delivery_plan"`
	Excluded     []DeliveryGroupResponse `json:"excluded_groups"`
	Rescheduled  []OrphanResponse        `json:"rescheduled"`
	Dropped      []OrphanResponse        `json:"dropped"`
	Routes       []RouteResponse         `json:"routes"`
	Daily        []DailySummaryResponse  `json:"daily"`
	Rejected     []RejectedResponse      `json:"rejected"`
	Diagnostics  DiagnosticsResponse     `json:"diagnostics"`
}

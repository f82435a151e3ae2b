package domain

import "strings"

// CustomerPoint is a geocoded customer that passed coordinate validation.
// It is never mutated after construction.
type CustomerPoint struct {
	ID     string
	Coords Coordinates
}

// NewCustomerPoint validates the raw record against box.
// An empty id is a structural error; an out-of-box position is an
// *InvalidCoordinateError the caller is expected to report and skip.
func NewCustomerPoint(id string, lat, lon float64, box BoundingBox) (CustomerPoint, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CustomerPoint{}, ErrEmptyCustomerID
	}

	c := Coordinates{Lat: lat, Lon: lon}
	if !box.Contains(c) {
		return CustomerPoint{}, &InvalidCoordinateError{CustomerID: id, Lat: lat, Lon: lon}
	}

	return CustomerPoint{ID: id, Coords: c}, nil
}

// RejectedRecord is an input row excluded from clustering.
type RejectedRecord struct {
	CustomerID string
	Lat        float64
	Lon        float64
	Reason     string
}

// CustomerRecord is a raw geocoded row as delivered by the upstream geocoder.
type CustomerRecord struct {
	ID  string
	Lat float64
	Lon float64
}

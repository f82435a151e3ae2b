package dto

type CustomerResponse struct {
	CustomerID string  `json:"customer_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
}

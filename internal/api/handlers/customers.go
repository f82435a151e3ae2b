package handlers

import (
	"delivery-zone-planner/internal/api/dto"
	"delivery-zone-planner/internal/ports"
	"log"
	"net/http"
)

// CustomerHandler exposes the stored customer table read-only.
type CustomerHandler struct {
	Repo ports.CustomerRepository
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	customers, err := h.Repo.ListCustomers(r.Context())
	if err != nil {
		log.Printf("list customers failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListCustomersResponse{
		Customers: make([]dto.CustomerResponse, 0, len(customers)),
	}
	for _, c := range customers {
		res.Customers = append(res.Customers, dto.CustomerResponse{
			CustomerID: c.ID,
			Latitude:   c.Lat,
			Longitude:  c.Lon,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

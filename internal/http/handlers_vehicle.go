package http

import (
	"net/http"

	"carledger/internal/services"
)

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	vehicle, err := s.vehicles.Create(r.Context(), req.toInput())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to create vehicle.")
		return
	}

	respondData(w, http.StatusCreated, toVehicleResponse(*vehicle))
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.vehicles.List(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to list vehicles.")
		return
	}

	respondData(w, http.StatusOK, toVehicleResponses(vehicles))
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicle, err := s.vehicles.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to load vehicle.")
		return
	}

	respondData(w, http.StatusOK, toVehicleResponse(*vehicle))
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	vehicle, err := s.vehicles.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to update vehicle.")
		return
	}

	respondData(w, http.StatusOK, toVehicleResponse(*vehicle))
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := s.vehicles.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondServiceError(w, r, err, "Failed to delete vehicle.")
		return
	}

	respondData(w, http.StatusOK, nil)
}

func (s *Server) handleMarkVehicleSold(w http.ResponseWriter, r *http.Request) {
	var req soldRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	vehicle, err := s.vehicles.MarkSold(r.Context(), r.PathValue("id"), services.SoldInput{
		SoldPrice: req.SoldPrice.Decimal,
		SoldDate:  req.SoldDate.Time,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to mark vehicle as sold.")
		return
	}

	respondData(w, http.StatusOK, toVehicleResponse(*vehicle))
}

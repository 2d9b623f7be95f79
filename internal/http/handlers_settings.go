package http

import (
	"net/http"

	"carledger/internal/services"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profile.Get(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to load dealer profile.")
		return
	}

	respondData(w, http.StatusOK, toProfileResponse(*profile))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	profile, err := s.profile.Update(r.Context(), services.ProfileInput{
		CompanyName: req.CompanyName,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
	})
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to update dealer profile.")
		return
	}

	respondData(w, http.StatusOK, toProfileResponse(*profile))
}

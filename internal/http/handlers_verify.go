package http

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"carledger/internal/core"
)

// handleVerify serves the public verification payload for one vehicle:
// its summary, publicly visible expenses only, and the dealer's name.
// Vehicle and profile load concurrently; either failure rejects the
// whole request.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var (
		vehicle *core.Vehicle
		profile *core.DealerProfile
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		vehicle, err = s.vehicles.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = s.profile.Get(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.respondServiceError(w, r, err, "Failed to load verification data.")
		return
	}

	expenses, err := s.vehicles.PublicExpenses(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to load verification data.")
		return
	}

	respondData(w, http.StatusOK, verifyResponse{
		Vehicle: verifyVehicle{
			ID:        vehicle.ID,
			Make:      vehicle.Make,
			Model:     vehicle.Model,
			Year:      vehicle.Year,
			RegNumber: vehicle.RegNumber,
			Status:    string(vehicle.Status),
			Images:    imagesOrEmpty(vehicle.Images),
		},
		Expenses: toExpenseResponses(expenses),
		Dealer:   profile.CompanyName,
	})
}

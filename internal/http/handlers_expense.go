package http

import (
	"net/http"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	expense, err := s.expenses.Create(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to create expense.")
		return
	}

	respondData(w, http.StatusCreated, toExpenseResponse(*expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	expense, err := s.expenses.Update(r.Context(), r.PathValue("id"), req.toInput())
	if err != nil {
		s.respondServiceError(w, r, err, "Failed to update expense.")
		return
	}

	respondData(w, http.StatusOK, toExpenseResponse(*expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.respondServiceError(w, r, err, "Failed to delete expense.")
		return
	}

	respondData(w, http.StatusOK, nil)
}

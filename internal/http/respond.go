package http

import (
	"encoding/json"
	"errors"
	"net/http"

	applog "carledger/internal/log"
	"carledger/internal/core"
	"carledger/internal/report"
	"carledger/internal/services"
	"carledger/internal/storage"
)

// envelope is the wire shape of every API response: success with data,
// or failure with one human-readable message and nothing else.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondServiceError maps layer errors onto the envelope. Validation
// failures name the offending field; everything unexpected collapses to
// the caller-supplied fallback so internals never leak.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var valErr *services.ValidationError
	if errors.As(err, &valErr) {
		respondError(w, http.StatusBadRequest, "Invalid "+valErr.Field+": "+valErr.Reason+".")
		return
	}
	var repErr *report.ValidationError
	if errors.As(err, &repErr) {
		respondError(w, http.StatusBadRequest, "Invalid "+repErr.Field+": "+repErr.Reason+".")
		return
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, storage.ErrDuplicateRegNumber):
		respondError(w, http.StatusConflict, "A vehicle with this registration number already exists.")
	case errors.Is(err, core.ErrAlreadySold):
		respondError(w, http.StatusConflict, "Vehicle is already marked as sold.")
	default:
		s.logger.ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

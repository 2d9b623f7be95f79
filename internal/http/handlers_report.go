package http

import (
	"net/http"
	"strconv"
	"strings"
)

const reportFailureMessage = "Failed to generate report."

// queryInt parses a required integer query parameter. There are no
// defaults: a missing or malformed value rejects the request.
func queryInt(r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (s *Server) handleAnnualReport(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(r, "year")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid year: must be a number.")
		return
	}

	data, err := s.reports.Annual(r.Context(), year)
	if err != nil {
		s.respondServiceError(w, r, err, reportFailureMessage)
		return
	}

	respondData(w, http.StatusOK, data)
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(r, "year")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid year: must be a number.")
		return
	}
	month, ok := queryInt(r, "month")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid month: must be a number.")
		return
	}

	data, err := s.reports.Monthly(r.Context(), month, year)
	if err != nil {
		s.respondServiceError(w, r, err, reportFailureMessage)
		return
	}

	respondData(w, http.StatusOK, data)
}

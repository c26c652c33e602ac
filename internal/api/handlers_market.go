package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleResolvePrices handles GET /api/prices/{instrumentCode}?from&to&source&baseCurrency
func (s *Server) handleResolvePrices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := dateParam(r, "from")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	to, err := dateParam(r, "to")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	points, err := s.services.Prices.ResolvePrices(r.Context(), mux.Vars(r)["instrumentCode"], from, to, q.Get("source"), q.Get("baseCurrency"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, points)
}

// handleInstrumentAsOf handles GET /api/instruments/{instrumentCode}?asOf
func (s *Server) handleInstrumentAsOf(w http.ResponseWriter, r *http.Request) {
	asOf, err := dateParam(r, "asOf")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	inst, err := s.services.Instruments.InstrumentAsOf(r.Context(), mux.Vars(r)["instrumentCode"], asOf)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, inst)
}

// handleCashProjection handles GET /api/cash-projection?portfolioCodes=A,B&days=7
func (s *Server) handleCashProjection(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "days")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	rows, err := s.services.Cash.ResolveCashProjection(r.Context(), listParam(r, "portfolioCodes"), days)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

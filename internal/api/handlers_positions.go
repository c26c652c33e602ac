package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleListPositions handles GET /api/positions?asOf&portfolioCode&page&size
func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	asOf, err := dateParam(r, "asOf")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	page, err := intParam(r, "page")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	size, err := intParam(r, "size")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	result, err := s.services.Positions.ListPositions(r.Context(), asOf, r.URL.Query().Get("portfolioCode"), intOrZero(page), intOrZero(size))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("X-Contract-Version", ContractVersion)
	respondJSON(w, http.StatusOK, result)
}

// handleResolvePosition handles GET /api/positions/{portfolioCode}/{instrumentCode}?asOf
func (s *Server) handleResolvePosition(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	asOf, err := dateParam(r, "asOf")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	position, err := s.services.Positions.ResolvePosition(r.Context(), asOf, vars["portfolioCode"], vars["instrumentCode"])
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("X-Contract-Version", ContractVersion)
	respondJSON(w, http.StatusOK, position)
}

// handlePositionDetail handles GET /api/positions/{portfolioCode}/{instrumentCode}/detail?asOf&lotView
func (s *Server) handlePositionDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	asOf, err := dateParam(r, "asOf")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	detail, err := s.services.Positions.PositionDetail(r.Context(), asOf, vars["portfolioCode"], vars["instrumentCode"], r.URL.Query().Get("lotView"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("X-Contract-Version", ContractVersion)
	respondJSON(w, http.StatusOK, detail)
}

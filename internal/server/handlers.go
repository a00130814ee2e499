package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gravitas-015/hexcore/hex"
	"github.com/rs/zerolog/log"

	"github.com/gravitas-games/hexspiral/internal/network"
	"github.com/gravitas-games/hexspiral/internal/service"
	"github.com/gravitas-games/hexspiral/internal/spiral"
)

const maxBodyBytes = 1 << 20

// BatchRequest is the body of POST /v1/batch
type BatchRequest struct {
	Indices []uint64   `json:"indices"`
	Cubes   []hex.Cube `json:"cubes"`
}

// BatchResponse answers a BatchRequest in the same order
type BatchResponse struct {
	ToCube   []spiral.Cell `json:"to_cube"`
	ToSpiral []spiral.Cell `json:"to_spiral"`
}

// handleSpiral converts a spiral index to cube coordinates
func (s *Server) handleSpiral(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_index", "index must be a non-negative integer")
		return
	}
	c, err := s.svc.SpiralToCube(r.Context(), x)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spiral.Cell{Index: x, Cube: c})
}

// handleCube converts cube coordinates to a spiral index
func (s *Server) handleCube(w http.ResponseWriter, r *http.Request) {
	var v [3]int
	for i, name := range []string{"q", "r", "s"} {
		n, err := strconv.Atoi(r.URL.Query().Get(name))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_cube", "q, r and s must be integers")
			return
		}
		v[i] = n
	}
	c := hex.Cube{Q: v[0], R: v[1], S: v[2]}

	x, err := s.svc.CubeToSpiral(r.Context(), c)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spiral.Cell{Index: x, Cube: c})
}

// handleRing lists the cells of one ring
func (s *Server) handleRing(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseUint(chi.URLParam(r, "ring"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ring", "ring must be a non-negative integer")
		return
	}
	cells, err := s.svc.Ring(r.Context(), n)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, network.RingResultPayload{Ring: n, Cells: cells})
}

// handleBatch converts many values in one request
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "body must be a JSON batch request")
		return
	}

	resp := BatchResponse{ToCube: []spiral.Cell{}, ToSpiral: []spiral.Cell{}}
	var err error
	if len(req.Indices) > 0 {
		if resp.ToCube, err = s.svc.BatchToCube(r.Context(), req.Indices); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if len(req.Cubes) > 0 {
		if resp.ToSpiral, err = s.svc.BatchToSpiral(r.Context(), req.Cubes); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// classify maps service errors to an HTTP status and protocol error code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMalformedCube):
		return http.StatusBadRequest, network.ErrCodeMalformedCube
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, network.ErrCodeNotFound
	case errors.Is(err, service.ErrOutOfRange):
		return http.StatusUnprocessableEntity, network.ErrCodeOutOfRange
	case errors.Is(err, service.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge, network.ErrCodeBatchTooLarge
	default:
		return http.StatusInternalServerError, network.ErrCodeInternal
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("conversion failed")
	}
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, network.ErrorPayload{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

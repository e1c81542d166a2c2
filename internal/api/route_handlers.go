package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crag-collective/logbook-engine/internal/logbook"
	"github.com/crag-collective/logbook-engine/internal/models"
)

// Guidebook handlers — routes and crags are owned by the guidebook
// subsystem and exposed read-only here.

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	filters := models.RouteFilters{
		CragID:  r.URL.Query().Get("crag_id"),
		OrderBy: r.URL.Query().Get("order_by"),
		Limit:   50,
		Offset:  0,
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filters.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filters.Offset = offset
		}
	}

	routes, err := s.logbook.ListRoutes(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list routes", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list routes")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"routes": routes,
		"total":  len(routes),
	})
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "route id is required")
		return
	}

	route, err := s.logbook.GetRoute(r.Context(), id)
	if err != nil {
		if errors.Is(err, logbook.ErrRouteNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "route not found")
			return
		}
		slog.Error("failed to get route", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get route")
		return
	}

	respondJSON(w, http.StatusOK, route)
}

func (s *Server) handleGetCrag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "crag id is required")
		return
	}

	crag, err := s.logbook.GetCrag(r.Context(), id)
	if err != nil {
		if errors.Is(err, logbook.ErrCragNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "crag not found")
			return
		}
		slog.Error("failed to get crag", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get crag")
		return
	}

	respondJSON(w, http.StatusOK, crag)
}

// Grading system handlers

func (s *Server) handleListGradeSystems(w http.ResponseWriter, r *http.Request) {
	systems := s.gradeCatalog.List()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"grade_systems": systems,
		"total":         len(systems),
	})
}

func (s *Server) handleGetGradeSystem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "grade system name is required")
		return
	}

	system := s.gradeCatalog.Get(name)
	if system == nil {
		respondError(w, http.StatusNotFound, "not_found", "grade system not found")
		return
	}

	respondJSON(w, http.StatusOK, system)
}

// Tick list handlers

func (s *Server) handleListTicks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "user_id is required")
		return
	}

	ticks, err := s.logbook.ListTicks(r.Context(), userID)
	if err != nil {
		slog.Error("failed to list ticks", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list ticks")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ticks": ticks,
		"total": len(ticks),
	})
}

func (s *Server) handleCreateTick(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	tick, err := s.logbook.CreateTick(r.Context(), req)
	if err != nil {
		var verr *logbook.ValidationError
		if errors.As(err, &verr) {
			respondValidation(w, verr)
			return
		}
		if errors.Is(err, logbook.ErrRouteNotFound) {
			respondError(w, http.StatusNotFound, "route_not_found", "route not found")
			return
		}
		slog.Error("failed to create tick", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create tick")
		return
	}

	respondJSON(w, http.StatusCreated, tick)
}

func (s *Server) handleDeleteTick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "tick id is required")
		return
	}

	if err := s.logbook.DeleteTick(r.Context(), id); err != nil {
		if errors.Is(err, logbook.ErrTickNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "tick not found")
			return
		}
		slog.Error("failed to delete tick", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete tick")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "tick deleted",
	})
}

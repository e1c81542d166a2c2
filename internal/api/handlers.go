package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crag-collective/logbook-engine/internal/logbook"
	"github.com/crag-collective/logbook-engine/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

func respondValidation(w http.ResponseWriter, verr *logbook.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    "validation_error",
			Message: verr.Error(),
			Fields:  verr.Fields,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.logbook.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Ascent handlers

func (s *Server) handleCreateAscent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAscentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ascent, err := s.logbook.CreateAscent(r.Context(), req)
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
		slog.Error("failed to create ascent", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create ascent")
		return
	}

	respondJSON(w, http.StatusCreated, ascent)
}

func (s *Server) handleGetAscent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "ascent id is required")
		return
	}

	ascent, err := s.logbook.GetAscent(r.Context(), id)
	if err != nil {
		if errors.Is(err, logbook.ErrAscentNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "ascent not found")
			return
		}
		slog.Error("failed to get ascent", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get ascent")
		return
	}

	respondJSON(w, http.StatusOK, ascent)
}

func (s *Server) handleUpdateAscent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "ascent id is required")
		return
	}

	var req models.UpdateAscentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	ascent, err := s.logbook.UpdateAscent(r.Context(), id, req)
	if err != nil {
		var verr *logbook.ValidationError
		if errors.As(err, &verr) {
			respondValidation(w, verr)
			return
		}
		if errors.Is(err, logbook.ErrAscentNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "ascent not found")
			return
		}
		if errors.Is(err, logbook.ErrRouteNotFound) {
			respondError(w, http.StatusNotFound, "route_not_found", "route not found")
			return
		}
		if errors.Is(err, logbook.ErrSessionConsistency) {
			respondError(w, http.StatusConflict, "session_conflict", "climbing session state conflict")
			return
		}
		slog.Error("failed to update ascent", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update ascent")
		return
	}

	respondJSON(w, http.StatusOK, ascent)
}

func (s *Server) handleDeleteAscent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "ascent id is required")
		return
	}

	if err := s.logbook.DeleteAscent(r.Context(), id); err != nil {
		if errors.Is(err, logbook.ErrAscentNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "ascent not found")
			return
		}
		slog.Error("failed to delete ascent", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete ascent")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "ascent deleted",
	})
}

func (s *Server) handleListAscents(w http.ResponseWriter, r *http.Request) {
	filters := models.AscentFilters{
		UserID:  r.URL.Query().Get("user_id"),
		RouteID: r.URL.Query().Get("route_id"),
		Limit:   50, // default
		Offset:  0,
	}

	for _, v := range splitParam(r.URL.Query().Get("ascent_status")) {
		filters.AscentStatuses = append(filters.AscentStatuses, models.AscentStatus(v))
	}
	for _, v := range splitParam(r.URL.Query().Get("roping_status")) {
		filters.RopingStatuses = append(filters.RopingStatuses, models.RopingStatus(v))
	}
	filters.ClimbingTypes = splitParam(r.URL.Query().Get("climbing_type"))

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

	ascents, err := s.logbook.ListAscents(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list ascents", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list ascents")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"ascents": ascents,
		"total":   len(ascents),
	})
}

// Statistics handlers

func (s *Server) handleFigures(w http.ResponseWriter, r *http.Request) {
	filters := models.FigureFilters{
		UserID:        r.URL.Query().Get("user_id"),
		LeadOnly:      r.URL.Query().Get("lead_only") == "true",
		ClimbingTypes: splitParam(r.URL.Query().Get("climbing_type")),
	}

	for _, v := range splitParam(r.URL.Query().Get("ascent_status")) {
		filters.AscentStatuses = append(filters.AscentStatuses, models.AscentStatus(v))
	}
	for _, v := range splitParam(r.URL.Query().Get("roping_status")) {
		filters.RopingStatuses = append(filters.RopingStatuses, models.RopingStatus(v))
	}

	figures, err := s.logbook.Figures(r.Context(), filters)
	if err != nil {
		var verr *logbook.ValidationError
		if errors.As(err, &verr) {
			respondValidation(w, verr)
			return
		}
		slog.Error("failed to compute figures", "error", err, "user_id", filters.UserID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to compute figures")
		return
	}

	respondJSON(w, http.StatusOK, figures)
}

// splitParam splits a comma-separated query parameter
func splitParam(value string) []string {
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crag-collective/logbook-engine/internal/logbook"
	"github.com/crag-collective/logbook-engine/internal/models"
)

// Climbing session handlers. Sessions are derived from ascents and
// exposed read-only; they are created and pruned by the ascent write
// path.

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	filters := models.SessionFilters{
		UserID: r.URL.Query().Get("user_id"),
		Limit:  50,
		Offset: 0,
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "from must be a date in 2006-01-02 format")
			return
		}
		filters.From = &from
	}

	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			respondError(w, http.StatusBadRequest, "validation_error", "to must be a date in 2006-01-02 format")
			return
		}
		filters.To = &to
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

	sessions, err := s.logbook.ListSessions(r.Context(), filters)
	if err != nil {
		slog.Error("failed to list climbing sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list climbing sessions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"climbing_sessions": sessions,
		"total":             len(sessions),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "session id is required")
		return
	}

	session, err := s.logbook.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, logbook.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "climbing session not found")
			return
		}
		slog.Error("failed to get climbing session", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get climbing session")
		return
	}

	respondJSON(w, http.StatusOK, session)
}

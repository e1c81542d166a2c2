package logbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crag-collective/logbook-engine/internal/models"
	"github.com/crag-collective/logbook-engine/internal/storage"
)

// Manager defines the interface for the logbook core
type Manager interface {
	CreateAscent(ctx context.Context, req models.CreateAscentRequest) (*models.Ascent, error)
	UpdateAscent(ctx context.Context, id string, req models.UpdateAscentRequest) (*models.Ascent, error)
	DeleteAscent(ctx context.Context, id string) error
	GetAscent(ctx context.Context, id string) (*models.Ascent, error)
	ListAscents(ctx context.Context, filters models.AscentFilters) ([]*models.Ascent, error)

	GetSession(ctx context.Context, id string) (*models.ClimbingSession, error)
	ListSessions(ctx context.Context, filters models.SessionFilters) ([]*models.ClimbingSession, error)

	Figures(ctx context.Context, filters models.FigureFilters) (*models.Figures, error)

	GetRoute(ctx context.Context, id string) (*models.Route, error)
	ListRoutes(ctx context.Context, filters models.RouteFilters) ([]*models.Route, error)
	GetCrag(ctx context.Context, id string) (*models.Crag, error)

	CreateTick(ctx context.Context, req models.CreateTickRequest) (*models.Tick, error)
	ListTicks(ctx context.Context, userID string) ([]*models.Tick, error)
	DeleteTick(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}

// FiguresCache caches computed statistics per user and filter set.
// All methods are best-effort; the manager never fails on cache errors.
type FiguresCache interface {
	Get(ctx context.Context, filters models.FigureFilters) (*models.Figures, bool)
	Set(ctx context.Context, filters models.FigureFilters, figures *models.Figures)
	InvalidateUser(ctx context.Context, userID string)
}

// LogbookManager implements Manager over a storage repository
type LogbookManager struct {
	repo  storage.Repository
	cache FiguresCache
}

// NewManager creates a new LogbookManager. cache may be nil to disable
// figures caching.
func NewManager(repo storage.Repository, cache FiguresCache) *LogbookManager {
	return &LogbookManager{
		repo:  repo,
		cache: cache,
	}
}

// Ping checks that the manager's dependencies are reachable
func (m *LogbookManager) Ping(ctx context.Context) error {
	if err := m.repo.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// --- Ascents ---

// CreateAscent validates and logs an ascent: route-derived fields are
// snapshotted, the record is persisted together with its session
// attachment, and a completed climb clears any "to try" tick for the
// route. All side effects commit or roll back together.
func (m *LogbookManager) CreateAscent(ctx context.Context, req models.CreateAscentRequest) (*models.Ascent, error) {
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	releasedAt, err := time.Parse("2006-01-02", req.ReleasedAt)
	if err != nil {
		return nil, NewValidationError("released_at", "must be a date in 2006-01-02 format")
	}

	route, err := m.repo.GetRoute(ctx, req.RouteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	if route == nil {
		return nil, ErrRouteNotFound
	}

	now := time.Now().UTC()
	a := &models.Ascent{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		RouteID:        route.ID,
		AscentStatus:   req.AscentStatus,
		RopingStatus:   req.RopingStatus,
		HardnessStatus: req.HardnessStatus,
		Attempt:        req.Attempt,
		Note:           req.Note,
		Comment:        req.Comment,
		PrivateComment: req.PrivateComment,
		ReleasedAt:     releasedAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	Resolve(a, route, normalizeSelected(req.SelectedSections))

	if err := m.repo.CreateAscent(ctx, a, a.AscentStatus.IsMade()); err != nil {
		return nil, m.mapStorageErr(err)
	}

	m.invalidateFigures(ctx, a.UserID)
	return a, nil
}

// UpdateAscent resubmits an existing ascent. Section selection changes
// re-run grade resolution against the route's current state; a changed
// date re-attaches the ascent to the session for the new day.
func (m *LogbookManager) UpdateAscent(ctx context.Context, id string, req models.UpdateAscentRequest) (*models.Ascent, error) {
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	a, err := m.repo.GetAscent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load ascent: %w", err)
	}
	if a == nil {
		return nil, ErrAscentNotFound
	}

	if req.AscentStatus != "" {
		a.AscentStatus = req.AscentStatus
	}
	if req.RopingStatus != "" {
		a.RopingStatus = req.RopingStatus
	}
	if req.HardnessStatus != "" {
		a.HardnessStatus = req.HardnessStatus
	}
	if req.Attempt != nil {
		a.Attempt = *req.Attempt
	}
	if req.Note != nil {
		a.Note = req.Note
	}
	if req.Comment != nil {
		a.Comment = *req.Comment
	}
	if req.PrivateComment != nil {
		a.PrivateComment = *req.PrivateComment
	}
	if req.ReleasedAt != "" {
		releasedAt, err := time.Parse("2006-01-02", req.ReleasedAt)
		if err != nil {
			return nil, NewValidationError("released_at", "must be a date in 2006-01-02 format")
		}
		a.ReleasedAt = releasedAt
	}

	if req.SelectedSections != nil && a.RouteID != "" {
		route, err := m.repo.GetRoute(ctx, a.RouteID)
		if err != nil {
			return nil, fmt.Errorf("failed to load route: %w", err)
		}
		if route == nil {
			return nil, ErrRouteNotFound
		}
		Resolve(a, route, normalizeSelected(req.SelectedSections))
	}

	a.UpdatedAt = time.Now().UTC()

	if err := m.repo.UpdateAscent(ctx, a); err != nil {
		return nil, m.mapStorageErr(err)
	}

	m.invalidateFigures(ctx, a.UserID)
	return a, nil
}

// DeleteAscent removes an ascent, cleaning up its session if emptied
func (m *LogbookManager) DeleteAscent(ctx context.Context, id string) error {
	a, err := m.repo.GetAscent(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load ascent: %w", err)
	}
	if a == nil {
		return ErrAscentNotFound
	}

	if err := m.repo.DeleteAscent(ctx, id); err != nil {
		return m.mapStorageErr(err)
	}

	m.invalidateFigures(ctx, a.UserID)
	return nil
}

// GetAscent retrieves an ascent by ID
func (m *LogbookManager) GetAscent(ctx context.Context, id string) (*models.Ascent, error) {
	a, err := m.repo.GetAscent(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAscentNotFound
	}
	return a, nil
}

// ListAscents returns ascents matching filters
func (m *LogbookManager) ListAscents(ctx context.Context, filters models.AscentFilters) ([]*models.Ascent, error) {
	return m.repo.ListAscents(ctx, filters)
}

// --- Climbing sessions ---

// GetSession retrieves a climbing session with its ascents
func (m *LogbookManager) GetSession(ctx context.Context, id string) (*models.ClimbingSession, error) {
	s, err := m.repo.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// ListSessions returns climbing sessions matching filters
func (m *LogbookManager) ListSessions(ctx context.Context, filters models.SessionFilters) ([]*models.ClimbingSession, error) {
	return m.repo.ListSessions(ctx, filters)
}

// --- Statistics ---

// Figures computes the statistics snapshot for a user's filtered
// ascent history, serving from cache when possible.
func (m *LogbookManager) Figures(ctx context.Context, filters models.FigureFilters) (*models.Figures, error) {
	if filters.UserID == "" {
		return nil, NewValidationError("user_id", "is required")
	}

	if m.cache != nil {
		if figures, ok := m.cache.Get(ctx, filters); ok {
			return figures, nil
		}
	}

	rows, err := m.repo.ListFigureRows(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to load ascent history: %w", err)
	}

	figures := ComputeFigures(rows)

	if m.cache != nil {
		m.cache.Set(ctx, filters, &figures)
	}

	return &figures, nil
}

// --- Guidebook reads ---

// GetRoute retrieves a route with its crag
func (m *LogbookManager) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	route, err := m.repo.GetRoute(ctx, id)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrRouteNotFound
	}
	return route, nil
}

// ListRoutes returns routes matching filters
func (m *LogbookManager) ListRoutes(ctx context.Context, filters models.RouteFilters) ([]*models.Route, error) {
	return m.repo.ListRoutes(ctx, filters)
}

// GetCrag retrieves a crag by ID
func (m *LogbookManager) GetCrag(ctx context.Context, id string) (*models.Crag, error) {
	crag, err := m.repo.GetCrag(ctx, id)
	if err != nil {
		return nil, err
	}
	if crag == nil {
		return nil, ErrCragNotFound
	}
	return crag, nil
}

// --- Ticks ---

// CreateTick bookmarks a route on a user's "to try" list
func (m *LogbookManager) CreateTick(ctx context.Context, req models.CreateTickRequest) (*models.Tick, error) {
	if err := checkStruct(req); err != nil {
		return nil, err
	}

	route, err := m.repo.GetRoute(ctx, req.RouteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	if route == nil {
		return nil, ErrRouteNotFound
	}

	t := &models.Tick{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		RouteID:   req.RouteID,
		CreatedAt: time.Now().UTC(),
	}

	if err := m.repo.CreateTick(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// ListTicks returns a user's tick list
func (m *LogbookManager) ListTicks(ctx context.Context, userID string) ([]*models.Tick, error) {
	return m.repo.ListTicks(ctx, userID)
}

// DeleteTick removes a tick by ID
func (m *LogbookManager) DeleteTick(ctx context.Context, id string) error {
	if err := m.repo.DeleteTick(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTickNotFound
		}
		return err
	}
	return nil
}

// mapStorageErr translates storage-level errors into domain errors
func (m *LogbookManager) mapStorageErr(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrAscentNotFound
	case errors.Is(err, storage.ErrSessionOwnerMismatch):
		return fmt.Errorf("%w: %w", ErrSessionConsistency, err)
	}
	return err
}

func (m *LogbookManager) invalidateFigures(ctx context.Context, userID string) {
	if m.cache != nil {
		m.cache.InvalidateUser(ctx, userID)
	}
}

package storage

import (
	"context"
	"errors"

	"github.com/crag-collective/logbook-engine/internal/models"
)

// Storage-level errors
var (
	// ErrNotFound is returned by transactional ops targeting a row
	// that no longer exists. Plain reads return nil instead.
	ErrNotFound = errors.New("record not found")

	// ErrSessionOwnerMismatch is returned when session reconciliation
	// finds an ascent pointing at a session owned by a different user.
	// The enclosing transaction is rolled back.
	ErrSessionOwnerMismatch = errors.New("climbing session owned by a different user")
)

// Repository defines the interface for logbook persistence
type Repository interface {
	// Ascents. Create/Update/Delete are single transactions spanning
	// the ascent row, climbing-session reconciliation and (on create)
	// tick removal; partial writes are never visible.
	CreateAscent(ctx context.Context, a *models.Ascent, removeTick bool) error
	UpdateAscent(ctx context.Context, a *models.Ascent) error
	DeleteAscent(ctx context.Context, id string) error
	GetAscent(ctx context.Context, id string) (*models.Ascent, error)
	ListAscents(ctx context.Context, filters models.AscentFilters) ([]*models.Ascent, error)

	// Climbing sessions
	GetSession(ctx context.Context, id string) (*models.ClimbingSession, error)
	ListSessions(ctx context.Context, filters models.SessionFilters) ([]*models.ClimbingSession, error)
	DeleteEmptySessions(ctx context.Context) (int, error)

	// Guidebook reads (routes and crags are owned elsewhere)
	GetRoute(ctx context.Context, id string) (*models.Route, error)
	ListRoutes(ctx context.Context, filters models.RouteFilters) ([]*models.Route, error)
	GetCrag(ctx context.Context, id string) (*models.Crag, error)

	// Tick list ("to try" bookmarks)
	CreateTick(ctx context.Context, t *models.Tick) error
	ListTicks(ctx context.Context, userID string) ([]*models.Tick, error)
	DeleteTick(ctx context.Context, id string) error

	// Statistics read path
	ListFigureRows(ctx context.Context, filters models.FigureFilters) ([]models.FigureRow, error)

	// API Clients
	GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error)
	UpdateClientLastUsed(ctx context.Context, apiKey string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}

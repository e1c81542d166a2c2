package logbook

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/crag-collective/logbook-engine/internal/models"
	"github.com/crag-collective/logbook-engine/internal/storage"
)

const testRouteID = "a3bb189e-8bf9-4889-9b2d-efb4c3a0a1b2"

// fakeRepository is an in-memory Repository mirroring the transactional
// session semantics of the postgres implementation.
type fakeRepository struct {
	routes   map[string]*models.Route
	ascents  map[string]*models.Ascent
	sessions map[string]*models.ClimbingSession
	ticks    map[string]*models.Tick
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		routes:   make(map[string]*models.Route),
		ascents:  make(map[string]*models.Ascent),
		sessions: make(map[string]*models.ClimbingSession),
		ticks:    make(map[string]*models.Tick),
	}
}

func (r *fakeRepository) sessionFor(userID string, date time.Time) *models.ClimbingSession {
	for _, s := range r.sessions {
		if s.UserID == userID && s.SessionDate.Equal(date) {
			return s
		}
	}
	s := &models.ClimbingSession{
		ID:          fmt.Sprintf("session-%d", len(r.sessions)+1),
		UserID:      userID,
		SessionDate: date,
		CreatedAt:   time.Now().UTC(),
	}
	r.sessions[s.ID] = s
	return s
}

func (r *fakeRepository) pruneIfEmpty(sessionID string) {
	for _, a := range r.ascents {
		if a.ClimbingSessionID == sessionID {
			return
		}
	}
	delete(r.sessions, sessionID)
}

func (r *fakeRepository) CreateAscent(_ context.Context, a *models.Ascent, removeTick bool) error {
	copied := *a
	copied.ClimbingSessionID = r.sessionFor(a.UserID, a.SessionDate()).ID
	r.ascents[a.ID] = &copied
	a.ClimbingSessionID = copied.ClimbingSessionID
	if removeTick {
		for id, t := range r.ticks {
			if t.UserID == a.UserID && t.RouteID == a.RouteID {
				delete(r.ticks, id)
			}
		}
	}
	return nil
}

func (r *fakeRepository) UpdateAscent(_ context.Context, a *models.Ascent) error {
	prev, ok := r.ascents[a.ID]
	if !ok {
		return storage.ErrNotFound
	}
	oldSession := prev.ClimbingSessionID
	copied := *a
	copied.ClimbingSessionID = r.sessionFor(a.UserID, a.SessionDate()).ID
	r.ascents[a.ID] = &copied
	a.ClimbingSessionID = copied.ClimbingSessionID
	if oldSession != copied.ClimbingSessionID {
		r.pruneIfEmpty(oldSession)
	}
	return nil
}

func (r *fakeRepository) DeleteAscent(_ context.Context, id string) error {
	a, ok := r.ascents[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(r.ascents, id)
	r.pruneIfEmpty(a.ClimbingSessionID)
	return nil
}

func (r *fakeRepository) GetAscent(_ context.Context, id string) (*models.Ascent, error) {
	a, ok := r.ascents[id]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (r *fakeRepository) ListAscents(_ context.Context, filters models.AscentFilters) ([]*models.Ascent, error) {
	out := []*models.Ascent{}
	for _, a := range r.ascents {
		if filters.UserID != "" && a.UserID != filters.UserID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeRepository) GetSession(_ context.Context, id string) (*models.ClimbingSession, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *fakeRepository) ListSessions(_ context.Context, filters models.SessionFilters) ([]*models.ClimbingSession, error) {
	out := []*models.ClimbingSession{}
	for _, s := range r.sessions {
		if filters.UserID != "" && s.UserID != filters.UserID {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeRepository) DeleteEmptySessions(_ context.Context) (int, error) { return 0, nil }

func (r *fakeRepository) GetRoute(_ context.Context, id string) (*models.Route, error) {
	route, ok := r.routes[id]
	if !ok {
		return nil, nil
	}
	return route, nil
}

func (r *fakeRepository) ListRoutes(_ context.Context, _ models.RouteFilters) ([]*models.Route, error) {
	return nil, nil
}

func (r *fakeRepository) GetCrag(_ context.Context, _ string) (*models.Crag, error) {
	return nil, nil
}

func (r *fakeRepository) CreateTick(_ context.Context, t *models.Tick) error {
	for _, existing := range r.ticks {
		if existing.UserID == t.UserID && existing.RouteID == t.RouteID {
			return nil
		}
	}
	r.ticks[t.ID] = t
	return nil
}

func (r *fakeRepository) ListTicks(_ context.Context, userID string) ([]*models.Tick, error) {
	out := []*models.Tick{}
	for _, t := range r.ticks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepository) DeleteTick(_ context.Context, id string) error {
	if _, ok := r.ticks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(r.ticks, id)
	return nil
}

func (r *fakeRepository) ListFigureRows(_ context.Context, _ models.FigureFilters) ([]models.FigureRow, error) {
	return nil, nil
}

func (r *fakeRepository) GetClientByApiKey(_ context.Context, _ string) (*models.ApiClient, error) {
	return nil, nil
}

func (r *fakeRepository) UpdateClientLastUsed(_ context.Context, _ string) error { return nil }
func (r *fakeRepository) Ping(_ context.Context) error                           { return nil }
func (r *fakeRepository) Close() error                                           { return nil }

// fakeCache records invalidations
type fakeCache struct {
	invalidated []string
}

func (c *fakeCache) Get(_ context.Context, _ models.FigureFilters) (*models.Figures, bool) {
	return nil, false
}
func (c *fakeCache) Set(_ context.Context, _ models.FigureFilters, _ *models.Figures) {}
func (c *fakeCache) InvalidateUser(_ context.Context, userID string) {
	c.invalidated = append(c.invalidated, userID)
}

func setupManager(t *testing.T) (*LogbookManager, *fakeRepository, *fakeCache) {
	t.Helper()
	repo := newFakeRepository()
	repo.routes[testRouteID] = testRoute()
	repo.routes[testRouteID].ID = testRouteID
	cache := &fakeCache{}
	return NewManager(repo, cache), repo, cache
}

func createRequest() models.CreateAscentRequest {
	return models.CreateAscentRequest{
		UserID:           "user-1",
		RouteID:          testRouteID,
		AscentStatus:     models.StatusRedPoint,
		RopingStatus:     models.RopingLead,
		Attempt:          2,
		ReleasedAt:       "2024-03-15",
		SelectedSections: []int{0, 1},
	}
}

func TestCreateAscentAttachesSession(t *testing.T) {
	manager, repo, cache := setupManager(t)
	ctx := context.Background()

	ascent, err := manager.CreateAscent(ctx, createRequest())
	if err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}

	if ascent.ClimbingSessionID == "" {
		t.Fatal("ascent not attached to a session")
	}
	session := repo.sessions[ascent.ClimbingSessionID]
	if session == nil {
		t.Fatal("session not created")
	}
	if !session.SessionDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected session date %v", session.SessionDate)
	}

	// Resolved fields snapshotted from the route
	if ascent.MaxGradeText != "5c" || ascent.MinGradeText != "5a" {
		t.Errorf("unexpected grade bounds %s/%s", ascent.MaxGradeText, ascent.MinGradeText)
	}

	if len(cache.invalidated) != 1 || cache.invalidated[0] != "user-1" {
		t.Errorf("expected cache invalidation for user-1, got %v", cache.invalidated)
	}
}

func TestCreateAscentSameDateSharesSession(t *testing.T) {
	manager, repo, _ := setupManager(t)
	ctx := context.Background()

	first, err := manager.CreateAscent(ctx, createRequest())
	if err != nil {
		t.Fatalf("first CreateAscent failed: %v", err)
	}
	second, err := manager.CreateAscent(ctx, createRequest())
	if err != nil {
		t.Fatalf("second CreateAscent failed: %v", err)
	}

	if first.ClimbingSessionID != second.ClimbingSessionID {
		t.Errorf("same-day ascents should share a session: %s vs %s",
			first.ClimbingSessionID, second.ClimbingSessionID)
	}
	if len(repo.sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(repo.sessions))
	}
}

func TestCreateAscentRemovesTick(t *testing.T) {
	manager, repo, _ := setupManager(t)
	ctx := context.Background()

	repo.ticks["t1"] = &models.Tick{ID: "t1", UserID: "user-1", RouteID: testRouteID}

	if _, err := manager.CreateAscent(ctx, createRequest()); err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}

	if len(repo.ticks) != 0 {
		t.Error("completing a climb should clear its tick")
	}
}

func TestCreateProjectKeepsTick(t *testing.T) {
	manager, repo, _ := setupManager(t)
	ctx := context.Background()

	repo.ticks["t1"] = &models.Tick{ID: "t1", UserID: "user-1", RouteID: testRouteID}

	req := createRequest()
	req.AscentStatus = models.StatusProject
	if _, err := manager.CreateAscent(ctx, req); err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}

	if len(repo.ticks) != 1 {
		t.Error("project attempts should keep the tick")
	}
}

func TestCreateAscentUnknownRoute(t *testing.T) {
	manager, _, _ := setupManager(t)

	req := createRequest()
	req.RouteID = "b3bb189e-8bf9-4889-9b2d-efb4c3a0a1b2"
	_, err := manager.CreateAscent(context.Background(), req)
	if !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestCreateAscentValidation(t *testing.T) {
	manager, _, _ := setupManager(t)

	req := createRequest()
	req.AscentStatus = "cruised"
	_, err := manager.CreateAscent(context.Background(), req)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["ascent_status"]; !ok {
		t.Errorf("expected ascent_status in fields, got %v", verr.Fields)
	}
}

func TestUpdateAscentMovesSession(t *testing.T) {
	manager, repo, _ := setupManager(t)
	ctx := context.Background()

	ascent, err := manager.CreateAscent(ctx, createRequest())
	if err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}
	oldSession := ascent.ClimbingSessionID

	updated, err := manager.UpdateAscent(ctx, ascent.ID, models.UpdateAscentRequest{
		ReleasedAt: "2024-03-16",
	})
	if err != nil {
		t.Fatalf("UpdateAscent failed: %v", err)
	}

	if updated.ClimbingSessionID == oldSession {
		t.Error("date change should move the ascent to a new session")
	}
	if _, ok := repo.sessions[oldSession]; ok {
		t.Error("emptied session should be pruned")
	}
}

func TestUpdateAscentReresolvesSections(t *testing.T) {
	manager, _, _ := setupManager(t)
	ctx := context.Background()

	ascent, err := manager.CreateAscent(ctx, createRequest())
	if err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}

	updated, err := manager.UpdateAscent(ctx, ascent.ID, models.UpdateAscentRequest{
		SelectedSections: []int{2},
	})
	if err != nil {
		t.Fatalf("UpdateAscent failed: %v", err)
	}

	if updated.SectionsCount != 1 || updated.MaxGradeText != "5b" {
		t.Errorf("expected re-resolved bounds 5b over 1 section, got %s over %d",
			updated.MaxGradeText, updated.SectionsCount)
	}
}

func TestUpdateAscentNotFound(t *testing.T) {
	manager, _, _ := setupManager(t)

	_, err := manager.UpdateAscent(context.Background(), "missing", models.UpdateAscentRequest{})
	if !errors.Is(err, ErrAscentNotFound) {
		t.Errorf("expected ErrAscentNotFound, got %v", err)
	}
}

func TestDeleteAscentPrunesSession(t *testing.T) {
	manager, repo, _ := setupManager(t)
	ctx := context.Background()

	ascent, err := manager.CreateAscent(ctx, createRequest())
	if err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}

	if err := manager.DeleteAscent(ctx, ascent.ID); err != nil {
		t.Fatalf("DeleteAscent failed: %v", err)
	}

	if len(repo.sessions) != 0 {
		t.Error("deleting the only ascent should prune its session")
	}
	if len(repo.ascents) != 0 {
		t.Error("ascent not deleted")
	}
}

func TestDeleteAscentKeepsSharedSession(t *testing.T) {
	manager, repo, _ := setupManager(t)
	ctx := context.Background()

	first, err := manager.CreateAscent(ctx, createRequest())
	if err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}
	if _, err := manager.CreateAscent(ctx, createRequest()); err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}

	if err := manager.DeleteAscent(ctx, first.ID); err != nil {
		t.Fatalf("DeleteAscent failed: %v", err)
	}

	if len(repo.sessions) != 1 {
		t.Error("session with remaining ascents should survive")
	}
}

func TestFiguresRequiresUser(t *testing.T) {
	manager, _, _ := setupManager(t)

	_, err := manager.Figures(context.Background(), models.FigureFilters{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestDeleteTickNotFound(t *testing.T) {
	manager, _, _ := setupManager(t)

	err := manager.DeleteTick(context.Background(), "missing")
	if !errors.Is(err, ErrTickNotFound) {
		t.Errorf("expected ErrTickNotFound, got %v", err)
	}
}

func TestSessionConsistencyMapping(t *testing.T) {
	manager, _, _ := setupManager(t)

	err := manager.mapStorageErr(storage.ErrSessionOwnerMismatch)
	if !errors.Is(err, ErrSessionConsistency) {
		t.Errorf("expected ErrSessionConsistency, got %v", err)
	}
}

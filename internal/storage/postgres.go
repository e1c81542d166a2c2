package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crag-collective/logbook-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	// Set pool configuration
	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const ascentColumns = `id, user_id, route_id, climbing_session_id, ascent_status, roping_status, hardness_status, attempt, climbing_type, height, sections, sections_count, max_grade_value, max_grade_text, min_grade_value, min_grade_text, note, comment, private_comment, released_at, created_at, updated_at`

// --- Ascents ---

// CreateAscent persists a new ascent and reconciles its climbing
// session in one transaction: insert the row, find-or-create the
// session for (user, date), point the ascent at it, and drop any
// outstanding tick for the route when the climb was completed.
func (r *PostgresRepository) CreateAscent(ctx context.Context, a *models.Ascent, removeTick bool) error {
	sectionsJSON, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO ascents (id, user_id, route_id, ascent_status, roping_status, hardness_status, attempt, climbing_type, height, sections, sections_count, max_grade_value, max_grade_text, min_grade_value, min_grade_text, note, comment, private_comment, released_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err = tx.Exec(ctx, query,
		a.ID,
		a.UserID,
		nullString(a.RouteID),
		string(a.AscentStatus),
		nullString(string(a.RopingStatus)),
		nullString(string(a.HardnessStatus)),
		a.Attempt,
		a.ClimbingType,
		a.Height,
		sectionsJSON,
		a.SectionsCount,
		a.MaxGradeValue,
		a.MaxGradeText,
		a.MinGradeValue,
		a.MinGradeText,
		a.Note,
		nullString(a.Comment),
		nullString(a.PrivateComment),
		a.SessionDate(),
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ascent: %w", err)
	}

	sessionID, err := upsertSession(ctx, tx, a.UserID, a.SessionDate())
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE ascents SET climbing_session_id = $2 WHERE id = $1`, a.ID, sessionID); err != nil {
		return fmt.Errorf("failed to attach ascent to session: %w", err)
	}

	if removeTick && a.RouteID != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM ticks WHERE user_id = $1 AND route_id = $2`, a.UserID, a.RouteID); err != nil {
			return fmt.Errorf("failed to remove tick: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ascent: %w", err)
	}

	a.ClimbingSessionID = sessionID
	return nil
}

// UpdateAscent rewrites an ascent and re-reconciles its session. The
// previous session state is read under lock before any mutation so the
// detach-vs-no-op decision is made on consistent data; the old session
// is pruned when the re-dated ascent was its last one.
func (r *PostgresRepository) UpdateAscent(ctx context.Context, a *models.Ascent) error {
	sectionsJSON, err := json.Marshal(a.Sections)
	if err != nil {
		return fmt.Errorf("failed to marshal sections: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID string
	var oldSessionID sql.NullString
	err = tx.QueryRow(ctx, `SELECT user_id, climbing_session_id FROM ascents WHERE id = $1 FOR UPDATE`, a.ID).
		Scan(&ownerID, &oldSessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock ascent: %w", err)
	}

	if ownerID != a.UserID {
		return ErrSessionOwnerMismatch
	}

	if oldSessionID.Valid {
		var sessionOwner string
		err = tx.QueryRow(ctx, `SELECT user_id FROM climbing_sessions WHERE id = $1`, oldSessionID.String).Scan(&sessionOwner)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check session owner: %w", err)
		}
		if err == nil && sessionOwner != ownerID {
			return ErrSessionOwnerMismatch
		}
	}

	query := `
		UPDATE ascents
		SET ascent_status = $2, roping_status = $3, hardness_status = $4, attempt = $5, climbing_type = $6, height = $7, sections = $8, sections_count = $9, max_grade_value = $10, max_grade_text = $11, min_grade_value = $12, min_grade_text = $13, note = $14, comment = $15, private_comment = $16, released_at = $17, updated_at = $18
		WHERE id = $1
	`

	_, err = tx.Exec(ctx, query,
		a.ID,
		string(a.AscentStatus),
		nullString(string(a.RopingStatus)),
		nullString(string(a.HardnessStatus)),
		a.Attempt,
		a.ClimbingType,
		a.Height,
		sectionsJSON,
		a.SectionsCount,
		a.MaxGradeValue,
		a.MaxGradeText,
		a.MinGradeValue,
		a.MinGradeText,
		a.Note,
		nullString(a.Comment),
		nullString(a.PrivateComment),
		a.SessionDate(),
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update ascent: %w", err)
	}

	sessionID, err := upsertSession(ctx, tx, a.UserID, a.SessionDate())
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE ascents SET climbing_session_id = $2 WHERE id = $1`, a.ID, sessionID); err != nil {
		return fmt.Errorf("failed to attach ascent to session: %w", err)
	}

	if oldSessionID.Valid && oldSessionID.String != sessionID {
		if err := pruneSessionIfEmpty(ctx, tx, oldSessionID.String); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ascent update: %w", err)
	}

	a.ClimbingSessionID = sessionID
	return nil
}

// DeleteAscent removes an ascent and prunes its session when it was
// the last one attached.
func (r *PostgresRepository) DeleteAscent(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sessionID sql.NullString
	err = tx.QueryRow(ctx, `SELECT climbing_session_id FROM ascents WHERE id = $1 FOR UPDATE`, id).Scan(&sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to lock ascent: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM ascents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete ascent: %w", err)
	}

	if sessionID.Valid {
		if err := pruneSessionIfEmpty(ctx, tx, sessionID.String); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit ascent delete: %w", err)
	}

	return nil
}

// upsertSession finds or creates the climbing session for a (user,
// date) pair. The unique constraint on (user_id, session_date) plus
// the conflict clause make this atomic: two concurrent writers for the
// same key both land on the same row.
func upsertSession(ctx context.Context, tx pgx.Tx, userID string, date time.Time) (string, error) {
	query := `
		INSERT INTO climbing_sessions (id, user_id, session_date, created_at)
		VALUES (gen_random_uuid(), $1, $2, NOW())
		ON CONFLICT (user_id, session_date) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id
	`

	var id string
	if err := tx.QueryRow(ctx, query, userID, date).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to find or create climbing session: %w", err)
	}
	return id, nil
}

// pruneSessionIfEmpty deletes a session that no longer has ascents
func pruneSessionIfEmpty(ctx context.Context, tx pgx.Tx, sessionID string) error {
	query := `
		DELETE FROM climbing_sessions s
		WHERE s.id = $1
		  AND NOT EXISTS (SELECT 1 FROM ascents a WHERE a.climbing_session_id = s.id)
	`
	if _, err := tx.Exec(ctx, query, sessionID); err != nil {
		return fmt.Errorf("failed to prune climbing session: %w", err)
	}
	return nil
}

// GetAscent retrieves an ascent by ID
func (r *PostgresRepository) GetAscent(ctx context.Context, id string) (*models.Ascent, error) {
	query := `SELECT ` + ascentColumns + ` FROM ascents WHERE id = $1`

	a, err := scanAscent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get ascent: %w", err)
	}

	return a, nil
}

// ListAscents returns ascents matching filters
func (r *PostgresRepository) ListAscents(ctx context.Context, filters models.AscentFilters) ([]*models.Ascent, error) {
	query := `SELECT ` + ascentColumns + ` FROM ascents WHERE 1=1`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, filters.UserID)
		argNum++
	}

	if filters.RouteID != "" {
		query += fmt.Sprintf(" AND route_id = $%d", argNum)
		args = append(args, filters.RouteID)
		argNum++
	}

	if len(filters.AscentStatuses) > 0 {
		query += fmt.Sprintf(" AND ascent_status = ANY($%d)", argNum)
		args = append(args, statusStrings(filters.AscentStatuses))
		argNum++
	}

	if len(filters.RopingStatuses) > 0 {
		query += fmt.Sprintf(" AND roping_status = ANY($%d)", argNum)
		args = append(args, ropingStrings(filters.RopingStatuses))
		argNum++
	}

	if len(filters.ClimbingTypes) > 0 {
		query += fmt.Sprintf(" AND climbing_type = ANY($%d)", argNum)
		args = append(args, filters.ClimbingTypes)
		argNum++
	}

	query += " ORDER BY released_at DESC, created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ascents: %w", err)
	}
	defer rows.Close()

	var ascents []*models.Ascent
	for rows.Next() {
		a, err := scanAscent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ascent: %w", err)
		}
		ascents = append(ascents, a)
	}

	return ascents, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAscent(row rowScanner) (*models.Ascent, error) {
	var a models.Ascent
	var routeID, sessionID, ropingStatus, hardnessStatus, comment, privateComment sql.NullString
	var note sql.NullInt32
	var sectionsJSON []byte

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&routeID,
		&sessionID,
		&a.AscentStatus,
		&ropingStatus,
		&hardnessStatus,
		&a.Attempt,
		&a.ClimbingType,
		&a.Height,
		&sectionsJSON,
		&a.SectionsCount,
		&a.MaxGradeValue,
		&a.MaxGradeText,
		&a.MinGradeValue,
		&a.MinGradeText,
		&note,
		&comment,
		&privateComment,
		&a.ReleasedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.RouteID = routeID.String
	a.ClimbingSessionID = sessionID.String
	a.RopingStatus = models.RopingStatus(ropingStatus.String)
	a.HardnessStatus = models.HardnessStatus(hardnessStatus.String)
	a.Comment = comment.String
	a.PrivateComment = privateComment.String

	if note.Valid {
		v := int(note.Int32)
		a.Note = &v
	}

	if err := json.Unmarshal(sectionsJSON, &a.Sections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
	}

	return &a, nil
}

// --- Climbing sessions ---

// GetSession retrieves a climbing session with its ascents
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*models.ClimbingSession, error) {
	query := `SELECT id, user_id, session_date, created_at FROM climbing_sessions WHERE id = $1`

	var s models.ClimbingSession
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.SessionDate, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get climbing session: %w", err)
	}

	ascentsQuery := `SELECT ` + ascentColumns + ` FROM ascents WHERE climbing_session_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, ascentsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session ascents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanAscent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ascent: %w", err)
		}
		s.Ascents = append(s.Ascents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating session ascents: %w", err)
	}

	s.AscentsCount = len(s.Ascents)
	return &s, nil
}

// ListSessions returns a user's climbing sessions with ascent counts
func (r *PostgresRepository) ListSessions(ctx context.Context, filters models.SessionFilters) ([]*models.ClimbingSession, error) {
	query := `
		SELECT s.id, s.user_id, s.session_date, s.created_at, COUNT(a.id)
		FROM climbing_sessions s
		LEFT JOIN ascents a ON a.climbing_session_id = s.id
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.UserID != "" {
		query += fmt.Sprintf(" AND s.user_id = $%d", argNum)
		args = append(args, filters.UserID)
		argNum++
	}

	if filters.From != nil {
		query += fmt.Sprintf(" AND s.session_date >= $%d", argNum)
		args = append(args, *filters.From)
		argNum++
	}

	if filters.To != nil {
		query += fmt.Sprintf(" AND s.session_date <= $%d", argNum)
		args = append(args, *filters.To)
		argNum++
	}

	query += " GROUP BY s.id ORDER BY s.session_date DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list climbing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.ClimbingSession
	for rows.Next() {
		var s models.ClimbingSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.SessionDate, &s.CreatedAt, &s.AscentsCount); err != nil {
			return nil, fmt.Errorf("failed to scan climbing session: %w", err)
		}
		sessions = append(sessions, &s)
	}

	return sessions, rows.Err()
}

// DeleteEmptySessions removes sessions left without ascents. The write
// path never commits one, so anything found here is crash residue.
func (r *PostgresRepository) DeleteEmptySessions(ctx context.Context) (int, error) {
	query := `
		DELETE FROM climbing_sessions s
		WHERE NOT EXISTS (SELECT 1 FROM ascents a WHERE a.climbing_session_id = s.id)
	`

	result, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete empty sessions: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// --- Routes and crags ---

// GetRoute retrieves a route with its crag
func (r *PostgresRepository) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	query := `
		SELECT r.id, r.crag_id, r.name, r.slug_name, r.climbing_type, r.height, r.sections, r.created_at,
		       c.id, c.name, c.slug_name, c.region, c.country, c.latitude, c.longitude, c.created_at
		FROM routes r
		JOIN crags c ON c.id = r.crag_id
		WHERE r.id = $1
	`

	var route models.Route
	var crag models.Crag
	var sectionsJSON []byte

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&route.ID,
		&route.CragID,
		&route.Name,
		&route.SlugName,
		&route.ClimbingType,
		&route.Height,
		&sectionsJSON,
		&route.CreatedAt,
		&crag.ID,
		&crag.Name,
		&crag.SlugName,
		&crag.Region,
		&crag.Country,
		&crag.Latitude,
		&crag.Longitude,
		&crag.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	if err := json.Unmarshal(sectionsJSON, &route.Sections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
	}

	route.Crag = &crag
	return &route, nil
}

// ListRoutes returns routes matching filters, hardest first by default
func (r *PostgresRepository) ListRoutes(ctx context.Context, filters models.RouteFilters) ([]*models.Route, error) {
	order := "(SELECT COALESCE(MAX((s->>'grade_value')::int), 0) FROM jsonb_array_elements(r.sections) s) DESC"
	switch filters.OrderBy {
	case "difficulty_asc":
		order = "(SELECT COALESCE(MAX((s->>'grade_value')::int), 0) FROM jsonb_array_elements(r.sections) s) ASC"
	case "name":
		order = "r.name"
	}

	query := `
		SELECT r.id, r.crag_id, r.name, r.slug_name, r.climbing_type, r.height, r.sections, r.created_at
		FROM routes r
		WHERE 1=1
	`
	args := make([]interface{}, 0)
	argNum := 1

	if filters.CragID != "" {
		query += fmt.Sprintf(" AND r.crag_id = $%d", argNum)
		args = append(args, filters.CragID)
		argNum++
	}

	query += " ORDER BY " + order

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	defer rows.Close()

	var routes []*models.Route
	for rows.Next() {
		var route models.Route
		var sectionsJSON []byte

		err := rows.Scan(
			&route.ID,
			&route.CragID,
			&route.Name,
			&route.SlugName,
			&route.ClimbingType,
			&route.Height,
			&sectionsJSON,
			&route.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan route: %w", err)
		}

		if err := json.Unmarshal(sectionsJSON, &route.Sections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
		}

		routes = append(routes, &route)
	}

	return routes, rows.Err()
}

// GetCrag retrieves a crag by ID
func (r *PostgresRepository) GetCrag(ctx context.Context, id string) (*models.Crag, error) {
	query := `SELECT id, name, slug_name, region, country, latitude, longitude, created_at FROM crags WHERE id = $1`

	var c models.Crag
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.SlugName,
		&c.Region,
		&c.Country,
		&c.Latitude,
		&c.Longitude,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get crag: %w", err)
	}

	return &c, nil
}

// --- Ticks ---

// CreateTick bookmarks a route for a user; re-ticking is a no-op
func (r *PostgresRepository) CreateTick(ctx context.Context, t *models.Tick) error {
	query := `
		INSERT INTO ticks (id, user_id, route_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, route_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query, t.ID, t.UserID, t.RouteID, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tick: %w", err)
	}

	return nil
}

// ListTicks returns a user's tick list
func (r *PostgresRepository) ListTicks(ctx context.Context, userID string) ([]*models.Tick, error) {
	query := `SELECT id, user_id, route_id, created_at FROM ticks WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list ticks: %w", err)
	}
	defer rows.Close()

	var ticks []*models.Tick
	for rows.Next() {
		var t models.Tick
		if err := rows.Scan(&t.ID, &t.UserID, &t.RouteID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		ticks = append(ticks, &t)
	}

	return ticks, rows.Err()
}

// DeleteTick removes a tick by ID
func (r *PostgresRepository) DeleteTick(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM ticks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete tick: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// --- Statistics read path ---

// ListFigureRows returns a user's made ascents joined with their crags,
// oldest first, for the statistics engine.
func (r *PostgresRepository) ListFigureRows(ctx context.Context, filters models.FigureFilters) ([]models.FigureRow, error) {
	query := `
		SELECT a.id, a.route_id, a.max_grade_value, a.height, a.sections, a.created_at,
		       c.id, c.name, c.region, c.country
		FROM ascents a
		JOIN routes r ON r.id = a.route_id
		JOIN crags c ON c.id = r.crag_id
		WHERE a.user_id = $1
		  AND a.ascent_status != 'project'
	`
	args := []interface{}{filters.UserID}
	argNum := 2

	if filters.LeadOnly {
		query += " AND a.roping_status = 'lead_climb'"
	}

	if len(filters.AscentStatuses) > 0 {
		query += fmt.Sprintf(" AND a.ascent_status = ANY($%d)", argNum)
		args = append(args, statusStrings(filters.AscentStatuses))
		argNum++
	}

	if len(filters.RopingStatuses) > 0 {
		query += fmt.Sprintf(" AND a.roping_status = ANY($%d)", argNum)
		args = append(args, ropingStrings(filters.RopingStatuses))
		argNum++
	}

	if len(filters.ClimbingTypes) > 0 {
		query += fmt.Sprintf(" AND r.climbing_type = ANY($%d)", argNum)
		args = append(args, filters.ClimbingTypes)
	}

	query += " ORDER BY a.created_at ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list figure rows: %w", err)
	}
	defer rows.Close()

	var results []models.FigureRow
	for rows.Next() {
		var row models.FigureRow
		var sectionsJSON []byte

		err := rows.Scan(
			&row.AscentID,
			&row.RouteID,
			&row.MaxGradeValue,
			&row.Height,
			&sectionsJSON,
			&row.CreatedAt,
			&row.CragID,
			&row.CragName,
			&row.Region,
			&row.Country,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan figure row: %w", err)
		}

		if err := json.Unmarshal(sectionsJSON, &row.Sections); err != nil {
			return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
		}

		results = append(results, row)
	}

	return results, rows.Err()
}

// --- API clients ---

// GetClientByApiKey retrieves an API client by its key
func (r *PostgresRepository) GetClientByApiKey(ctx context.Context, apiKey string) (*models.ApiClient, error) {
	query := `
		SELECT id, name, api_key, is_active, created_at, last_used_at, permissions, metadata
		FROM api_clients
		WHERE api_key = $1
	`

	var client models.ApiClient
	var lastUsedAt sql.NullTime
	var permissionsJSON, metadataJSON []byte

	err := r.pool.QueryRow(ctx, query, apiKey).Scan(
		&client.ID,
		&client.Name,
		&client.ApiKey,
		&client.IsActive,
		&client.CreatedAt,
		&lastUsedAt,
		&permissionsJSON,
		&metadataJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get api client: %w", err)
	}

	if lastUsedAt.Valid {
		client.LastUsedAt = &lastUsedAt.Time
	}

	if permissionsJSON != nil {
		if err := json.Unmarshal(permissionsJSON, &client.Permissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
		}
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &client.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &client, nil
}

// UpdateClientLastUsed updates the last_used_at timestamp for a client
func (r *PostgresRepository) UpdateClientLastUsed(ctx context.Context, apiKey string) error {
	query := `UPDATE api_clients SET last_used_at = NOW() WHERE api_key = $1`

	_, err := r.pool.Exec(ctx, query, apiKey)
	if err != nil {
		return fmt.Errorf("failed to update client last_used_at: %w", err)
	}

	return nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func statusStrings(statuses []models.AscentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func ropingStrings(statuses []models.RopingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/crag-collective/logbook-engine/internal/models"
)

// Cache stores computed figures in Redis, keyed by user and filter
// set. Every ascent write for a user invalidates all of that user's
// entries; entries also expire on their own after the configured TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a figures cache backed by Redis
func NewCache(address, password string, db int, ttl time.Duration) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Cache{client: client, ttl: ttl}, nil
}

// Get returns cached figures for a filter set, false on miss
func (c *Cache) Get(ctx context.Context, filters models.FigureFilters) (*models.Figures, bool) {
	data, err := c.client.Get(ctx, Key(filters)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("figures cache read failed", "error", err)
		}
		return nil, false
	}

	var figures models.Figures
	if err := json.Unmarshal(data, &figures); err != nil {
		slog.Warn("figures cache entry corrupt", "error", err)
		return nil, false
	}

	return &figures, true
}

// Set stores computed figures for a filter set
func (c *Cache) Set(ctx context.Context, filters models.FigureFilters, figures *models.Figures) {
	data, err := json.Marshal(figures)
	if err != nil {
		return
	}

	if err := c.client.Set(ctx, Key(filters), data, c.ttl).Err(); err != nil {
		slog.Warn("figures cache write failed", "error", err)
	}
}

// InvalidateUser drops all cached figures for a user
func (c *Cache) InvalidateUser(ctx context.Context, userID string) {
	pattern := fmt.Sprintf("figures:%s:*", escapeUser(userID))
	var cursor uint64
	var deleted int

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("figures cache scan failed", "error", err, "user_id", userID)
			return
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("figures cache delete failed", "error", err)
			}
			deleted += len(keys)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if deleted > 0 {
		slog.Debug("figures cache invalidated", "user_id", userID, "keys_deleted", deleted)
	}
}

// HealthCheck verifies Redis connectivity
func (c *Cache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Key builds the cache key for a filter set. Filter slices are sorted
// so equivalent filter sets share one entry. The user component is
// escaped so an ID carrying glob characters cannot collide with or leak
// into another user's invalidation scan.
func Key(filters models.FigureFilters) string {
	parts := []string{
		fmt.Sprintf("lead=%t", filters.LeadOnly),
		"as=" + sortedJoin(ascentStatusStrings(filters.AscentStatuses)),
		"rs=" + sortedJoin(ropingStatusStrings(filters.RopingStatuses)),
		"ct=" + sortedJoin(append([]string(nil), filters.ClimbingTypes...)),
	}
	return fmt.Sprintf("figures:%s:%s", escapeUser(filters.UserID), strings.Join(parts, ";"))
}

// escapeUser percent-encodes the characters that are glob syntax to
// SCAN MATCH, plus the key separator and the escape itself. With none
// of them left in the user component, stored keys and the invalidation
// pattern cannot drift apart.
var userEscaper = strings.NewReplacer(
	"%", "%25",
	"*", "%2a",
	"?", "%3f",
	"[", "%5b",
	"]", "%5d",
	"^", "%5e",
	"\\", "%5c",
	":", "%3a",
)

func escapeUser(userID string) string {
	return userEscaper.Replace(userID)
}

func sortedJoin(values []string) string {
	sort.Strings(values)
	return strings.Join(values, ",")
}

func ascentStatusStrings(statuses []models.AscentStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func ropingStatusStrings(statuses []models.RopingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/crag-collective/logbook-engine/internal/storage"
)

// Cleaner periodically removes climbing sessions left without ascents.
// The ascent write path never commits an empty session; anything the
// sweeper finds is residue from an interrupted process.
type Cleaner struct {
	repo     storage.Repository
	interval time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(repo storage.Repository, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &Cleaner{
		repo:     repo,
		interval: interval,
	}
}

// Start launches the cleanup loop; it stops when ctx is cancelled
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("session cleaner started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session cleaner stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

func (c *Cleaner) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	deleted, err := c.repo.DeleteEmptySessions(sweepCtx)
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}

	if deleted > 0 {
		slog.Warn("removed empty climbing sessions", "count", deleted)
	}
}

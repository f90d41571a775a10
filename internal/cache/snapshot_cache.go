// Package cache implements the time-gated refreshing snapshot cache. It
// serves a stable, immutable snapshot to all readers and regenerates the
// batch inside the request path once the refresh interval has elapsed.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jayasurya0007/trades-backend/internal/clock"
	"github.com/jayasurya0007/trades-backend/internal/domain"
)

// PublishHook is invoked with each newly published snapshot, outside the
// cache lock. Hooks must treat the snapshot as read-only.
type PublishHook func(*domain.Snapshot)

// SnapshotCache holds the last generated batch and its publish time. The
// staleness check, regeneration, and publish form one critical section under
// the write lock, with a double-check so concurrent callers arriving at a
// stale cache trigger exactly one regeneration.
type SnapshotCache struct {
	gen        domain.Generator
	clk        clock.Clock
	interval   time.Duration
	batchPairs int
	logger     *slog.Logger
	hooks      []PublishHook

	mu          sync.RWMutex
	snapshot    *domain.Snapshot
	publishedAt time.Time
}

// New creates a SnapshotCache that regenerates batchPairs pairs whenever the
// published snapshot is older than interval.
func New(gen domain.Generator, clk clock.Clock, interval time.Duration, batchPairs int, logger *slog.Logger) *SnapshotCache {
	return &SnapshotCache{
		gen:        gen,
		clk:        clk,
		interval:   interval,
		batchPairs: batchPairs,
		logger:     logger.With(slog.String("component", "cache")),
	}
}

// OnPublish registers a hook to run after each publish. Hooks must be
// registered before the cache starts serving requests.
func (c *SnapshotCache) OnPublish(h PublishHook) {
	c.hooks = append(c.hooks, h)
}

// Snapshot returns the current snapshot, regenerating it first when stale.
// If regeneration fails and a previous snapshot exists, that snapshot is
// served and the failure is only logged: availability wins over freshness.
// An error is returned only when no snapshot has ever been published.
func (c *SnapshotCache) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	c.mu.RLock()
	if c.freshLocked() {
		snap := c.snapshot
		c.mu.RUnlock()
		return snap, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	// Another caller may have refreshed while we waited for the lock.
	if c.freshLocked() {
		snap := c.snapshot
		c.mu.Unlock()
		return snap, nil
	}

	records, err := c.gen.Generate(ctx, c.batchPairs)
	if err != nil {
		prev := c.snapshot
		c.mu.Unlock()
		if prev != nil {
			c.logger.ErrorContext(ctx, "refresh failed, serving stale snapshot",
				slog.String("snapshot_id", prev.ID.String()),
				slog.String("error", err.Error()),
			)
			return prev, nil
		}
		return nil, fmt.Errorf("cache: %w: %v", domain.ErrNoSnapshot, err)
	}

	snap := domain.NewSnapshot(records, c.clk.Now())
	c.snapshot = snap
	c.publishedAt = c.clk.Now()
	c.mu.Unlock()

	c.logger.InfoContext(ctx, "snapshot published",
		slog.String("snapshot_id", snap.ID.String()),
		slog.Int("records", len(snap.Records)),
	)
	for _, h := range c.hooks {
		h(snap)
	}
	return snap, nil
}

// freshLocked reports whether the published snapshot is still within the
// refresh interval. Callers must hold at least the read lock.
func (c *SnapshotCache) freshLocked() bool {
	return c.snapshot != nil && c.clk.Now().Sub(c.publishedAt) < c.interval
}

// Compile-time interface check.
var _ domain.SnapshotSource = (*SnapshotCache)(nil)

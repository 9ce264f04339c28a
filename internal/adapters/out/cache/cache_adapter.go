package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/infusioncare/appointment-optimizer/internal/config"
	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/core/ports/out"
)

type CacheAdapter struct {
	snapshots *lru.Cache[string, *domain.ScheduleSnapshot]
	mu        sync.RWMutex
	logger    out.LoggerPort
}

// NewCacheAdapter returns a nil adapter when caching is disabled;
// callers treat nil as cache-off.
func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	snapshots, err := lru.New[string, *domain.ScheduleSnapshot](cfg.Cache.SnapshotsSize)
	if err != nil {
		logger.Error("cache.snapshots.init_failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.SnapshotsSize,
		})
		return nil, err
	}

	return &CacheAdapter{
		snapshots: snapshots,
		logger:    logger.WithModule("CacheAdapter"),
	}, nil
}

// Snapshots are keyed by location and as-of date, so yesterday's entry
// never serves today's query.
func snapshotKey(location string, asOf time.Time) string {
	return location + "|" + asOf.Format("2006-01-02")
}

func (c *CacheAdapter) GetSnapshot(ctx context.Context, location string, asOf time.Time) (*domain.ScheduleSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot, exists := c.snapshots.Get(snapshotKey(location, asOf))
	if !exists {
		c.logger.Debug("cache.snapshots.get.miss", out.LogFields{
			"location": location,
		})
		return nil, false
	}

	c.logger.Debug("cache.snapshots.get.hit", out.LogFields{
		"location":     location,
		"appointments": len(snapshot.Appointments),
	})
	return snapshot, true
}

func (c *CacheAdapter) StoreSnapshot(ctx context.Context, snapshot *domain.ScheduleSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots.Add(snapshotKey(snapshot.Location, snapshot.AsOf), snapshot)

	c.logger.Debug("cache.snapshots.store", out.LogFields{
		"location":     snapshot.Location,
		"appointments": len(snapshot.Appointments),
	})
}

func (c *CacheAdapter) InvalidateSnapshot(ctx context.Context, location string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := location + "|"
	removed := 0
	for _, key := range c.snapshots.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.snapshots.Remove(key)
			removed++
		}
	}

	c.logger.Info("cache.snapshots.invalidated", out.LogFields{
		"location": location,
		"removed":  removed,
	})
}

func (c *CacheAdapter) InvalidateAllSnapshots(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshots.Purge()

	c.logger.Info("cache.snapshots.invalidated_all", out.LogFields{})
}

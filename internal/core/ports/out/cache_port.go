package out

import (
	"context"
	"time"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
)

// CachePort keeps normalized snapshots keyed by location and as-of date,
// so repeated queries for the same location within a day skip the
// upstream fetch.
type CachePort interface {
	GetSnapshot(ctx context.Context, location string, asOf time.Time) (*domain.ScheduleSnapshot, bool)
	StoreSnapshot(ctx context.Context, snapshot *domain.ScheduleSnapshot)
	InvalidateSnapshot(ctx context.Context, location string)
	InvalidateAllSnapshots(ctx context.Context)
}

package in

import (
	"context"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
)

type OptimizerUseCase interface {
	// Location names for the location picker
	GetLocations(ctx context.Context) ([]string, error)

	// Best open slots for a new appointment of the requested duration
	FindSlots(ctx context.Context, query domain.SlotQuery) (domain.RankedSlots, error)

	// Greedy reassignment of a location's appointments across its most
	// open days
	RebalanceDays(ctx context.Context, query domain.RebalanceQuery) (domain.RebalancePlan, error)

	// Snapshot cache eviction, driven by appointment-change messages
	InvalidateSnapshotCache(ctx context.Context, location string) error
	InvalidateAllSnapshotCache(ctx context.Context) error
}

package domain

import "time"

type CapacityModel string

const (
	// CapacityModelPerChairFixed gives every chair the same fixed daily
	// minute budget and aggregates per (location, chair, date).
	CapacityModelPerChairFixed CapacityModel = "per-chair-fixed"

	// CapacityModelPerLocationScaled scales a location's daily budget by
	// the number of distinct chairs observed anywhere in its data and
	// aggregates per (location, date).
	CapacityModelPerLocationScaled CapacityModel = "per-location-scaled"
)

func (m CapacityModel) Valid() bool {
	return m == CapacityModelPerChairFixed || m == CapacityModelPerLocationScaled
}

// DailyCapacity is the consumed/available/remaining minute balance for
// one aggregation key. ChairID is empty at location granularity.
type DailyCapacity struct {
	Location         string    `json:"location"`
	ChairID          string    `json:"chairId,omitempty"`
	Date             time.Time `json:"date"`
	ConsumedMinutes  int       `json:"consumedMinutes"`
	AvailableMinutes int       `json:"availableMinutes"`
	RemainingMinutes int       `json:"remainingMinutes"`
}

// UtilizationRatio is consumed/available clamped to [0, 1]. Overbooked
// days therefore project to the clinic's closing time, never past it.
func (c DailyCapacity) UtilizationRatio() float64 {
	if c.AvailableMinutes <= 0 {
		return 1
	}
	ratio := float64(c.ConsumedMinutes) / float64(c.AvailableMinutes)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

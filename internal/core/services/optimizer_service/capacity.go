package optimizer_service

import (
	"sort"
	"time"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
)

type capacityKey struct {
	chair string
	date  time.Time
}

// AggregateCapacity folds a snapshot into per-key minute balances. The
// aggregation key is (chair, date) under the per-chair model and (date)
// under the per-location model; only keys observed in the snapshot are
// produced, so a day with no appointments yields no row.
func AggregateCapacity(snapshot domain.ScheduleSnapshot, cfg domain.OptimizerConfig) []domain.DailyCapacity {
	consumed := make(map[capacityKey]int)
	chairs := make(map[string]struct{})

	for _, a := range snapshot.Appointments {
		chairs[a.ChairID] = struct{}{}

		key := capacityKey{date: a.ServiceDate}
		if cfg.CapacityModel == domain.CapacityModelPerChairFixed {
			key.chair = a.ChairID
		}
		consumed[key] += a.DurationMinutes
	}

	available := cfg.DailyCapacityMinutes
	if cfg.CapacityModel == domain.CapacityModelPerLocationScaled {
		// Chair count is per location across the whole snapshot, not per
		// date
		available = len(chairs) * cfg.DailyCapacityMinutes
	}

	capacities := make([]domain.DailyCapacity, 0, len(consumed))
	for key, minutes := range consumed {
		capacities = append(capacities, domain.DailyCapacity{
			Location:         snapshot.Location,
			ChairID:          key.chair,
			Date:             key.date,
			ConsumedMinutes:  minutes,
			AvailableMinutes: available,
			RemainingMinutes: max(0, available-minutes),
		})
	}

	sort.Slice(capacities, func(i, j int) bool {
		if !capacities[i].Date.Equal(capacities[j].Date) {
			return capacities[i].Date.Before(capacities[j].Date)
		}
		return capacities[i].ChairID < capacities[j].ChairID
	})

	return capacities
}

// dayRemaining collapses capacities to one remaining-minutes figure per
// date. Under the per-chair model a day's remaining is the sum over its
// observed chairs.
func dayRemaining(capacities []domain.DailyCapacity) []domain.DailyCapacity {
	byDate := make(map[time.Time]*domain.DailyCapacity)
	order := make([]time.Time, 0)

	for _, c := range capacities {
		day, ok := byDate[c.Date]
		if !ok {
			day = &domain.DailyCapacity{Location: c.Location, Date: c.Date}
			byDate[c.Date] = day
			order = append(order, c.Date)
		}
		day.ConsumedMinutes += c.ConsumedMinutes
		day.AvailableMinutes += c.AvailableMinutes
		day.RemainingMinutes += c.RemainingMinutes
	}

	days := make([]domain.DailyCapacity, 0, len(order))
	for _, date := range order {
		days = append(days, *byDate[date])
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})

	return days
}

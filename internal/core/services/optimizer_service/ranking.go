package optimizer_service

import (
	"math"
	"sort"
	"time"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/utils"
)

// RankSlots picks the best open slots for the query out of aggregated
// capacities. Candidates are days (or chair-days) inside the booking
// window, off holidays, whose remaining minutes cover the requested
// duration. Each carries a projected next-available clock time; ordering
// follows the configured tie-break and the first ResultCount candidates
// are returned. An empty candidate set is the no-capacity outcome, not
// an error.
func RankSlots(capacities []domain.DailyCapacity, query domain.SlotQuery, cfg domain.OptimizerConfig, today time.Time, isHoliday func(time.Time) bool) domain.RankedSlots {
	candidates := make([]domain.Slot, 0)

	// Chair narrowing only means anything at chair granularity; scaled
	// rows aggregate whole days and carry no chair
	chairGranular := cfg.CapacityModel == domain.CapacityModelPerChairFixed

	for _, c := range capacities {
		if c.Location != query.Location {
			continue
		}
		if chairGranular && query.ChairID != "" && c.ChairID != query.ChairID {
			continue
		}
		// Window and holiday checks repeat normalization as a safety net
		// for capacities built from older snapshots
		if !cfg.Window.Contains(today, c.Date) {
			continue
		}
		if isHoliday(c.Date) {
			continue
		}
		if c.RemainingMinutes < query.DurationMinutes {
			continue
		}

		candidates = append(candidates, domain.Slot{
			Location:         c.Location,
			ChairID:          c.ChairID,
			Date:             c.Date,
			NextAvailable:    projectNextAvailable(c, cfg),
			RemainingMinutes: c.RemainingMinutes,
			UtilizationPct:   math.Round(c.UtilizationRatio()*1000) / 10,
		})
	}

	if len(candidates) == 0 {
		return domain.RankedSlots{Slots: candidates, NoCapacity: true}
	}

	orderSlots(candidates, cfg.TieBreak)

	n := cfg.ResultCount
	if n <= 0 {
		n = domain.DefaultResultCount
	}
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	return domain.RankedSlots{Slots: candidates}
}

// projectNextAvailable approximates where a day's booked time leaves
// off: opening time plus utilization share of the business day, clamped
// to closing time. A fully booked day projects exactly to close.
func projectNextAvailable(c domain.DailyCapacity, cfg domain.OptimizerConfig) time.Time {
	minute := cfg.ClinicOpenMinutes + int(c.UtilizationRatio()*float64(cfg.BusinessMinutes()))
	if minute > cfg.ClinicCloseMinutes {
		minute = cfg.ClinicCloseMinutes
	}
	return utils.AtMinutes(c.Date, minute)
}

// orderSlots sorts candidates into a total order so fixed inputs always
// produce the same shortlist.
func orderSlots(slots []domain.Slot, tieBreak domain.TieBreak) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}

		if tieBreak == domain.TieBreakMostOpen {
			if a.RemainingMinutes != b.RemainingMinutes {
				return a.RemainingMinutes > b.RemainingMinutes
			}
			if !a.NextAvailable.Equal(b.NextAvailable) {
				return a.NextAvailable.Before(b.NextAvailable)
			}
			return a.ChairID < b.ChairID
		}

		if !a.NextAvailable.Equal(b.NextAvailable) {
			return a.NextAvailable.Before(b.NextAvailable)
		}
		if a.RemainingMinutes != b.RemainingMinutes {
			return a.RemainingMinutes > b.RemainingMinutes
		}
		return a.ChairID < b.ChairID
	})
}

package optimizer_service

import (
	"sort"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/utils"
)

// RebalanceAppointments reassigns every appointment in the snapshot to
// the location's most open days: the day pool is the topDays days ranked
// by remaining minutes descending, and each appointment (in ID order)
// goes to the first pooled day whose running remainder still covers its
// duration. An appointment that fits nowhere is put on the last pooled
// day no matter its capacity; that day's remainder may go negative. This
// is deliberate overflow handling, not a fairness guarantee, and it is a
// first-fit heuristic without backtracking.
func RebalanceAppointments(snapshot domain.ScheduleSnapshot, capacities []domain.DailyCapacity, topDays int) domain.RebalancePlan {
	plan := domain.RebalancePlan{
		Assignments: make([]domain.Reassignment, 0, len(snapshot.Appointments)),
		Days:        make([]domain.RebalanceDay, 0),
	}
	if len(snapshot.Appointments) == 0 {
		return plan
	}

	days := dayRemaining(capacities)
	if len(days) == 0 {
		return plan
	}
	sort.SliceStable(days, func(i, j int) bool {
		if days[i].RemainingMinutes != days[j].RemainingMinutes {
			return days[i].RemainingMinutes > days[j].RemainingMinutes
		}
		return days[i].Date.Before(days[j].Date)
	})

	if topDays <= 0 {
		topDays = domain.DefaultRebalanceDays
	}
	if len(days) > topDays {
		days = days[:topDays]
	}

	remaining := make([]int, len(days))
	for i, d := range days {
		remaining[i] = d.RemainingMinutes
		plan.Days = append(plan.Days, domain.RebalanceDay{
			Date:            d.Date,
			RemainingBefore: d.RemainingMinutes,
		})
	}
	plan.Days[len(plan.Days)-1].OverflowReceiver = true

	appointments := make([]domain.Appointment, len(snapshot.Appointments))
	copy(appointments, snapshot.Appointments)
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].ID < appointments[j].ID
	})

	for _, a := range appointments {
		target := len(days) - 1
		for i := range days {
			if remaining[i] >= a.DurationMinutes {
				target = i
				break
			}
		}

		remaining[target] -= a.DurationMinutes
		plan.Days[target].AssignedMinutes += a.DurationMinutes

		plan.Assignments = append(plan.Assignments, domain.Reassignment{
			AppointmentID: a.ID,
			OriginalDate:  a.ServiceDate,
			AssignedDate:  days[target].Date,
			DaysMoved:     utils.DaysBetween(a.ServiceDate, days[target].Date),
		})
	}

	return plan
}

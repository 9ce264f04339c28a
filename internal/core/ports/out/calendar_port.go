package out

import "time"

// CalendarPort answers holiday membership for service dates. Injected so
// the engine stays calendar-agnostic and testable.
type CalendarPort interface {
	IsHoliday(date time.Time) bool
}

package domain

import "time"

// BookingWindow selects which service dates are bookable relative to a
// reference today. The first bookable day is today+StartOffsetDays; the
// last is LengthDays after the first, both inclusive. OpenEnded windows
// have no last day.
type BookingWindow struct {
	StartOffsetDays int
	LengthDays      int
	OpenEnded       bool
}

// WindowTomorrowPlus books from tomorrow through n days after tomorrow.
func WindowTomorrowPlus(n int) BookingWindow {
	return BookingWindow{StartOffsetDays: 1, LengthDays: n}
}

// WindowTodayPlus books from today through n days after today.
func WindowTodayPlus(n int) BookingWindow {
	return BookingWindow{StartOffsetDays: 0, LengthDays: n}
}

// WindowDaysAheadAtLeast books any day n or more days ahead of today.
func WindowDaysAheadAtLeast(n int) BookingWindow {
	return BookingWindow{StartOffsetDays: n, OpenEnded: true}
}

// Bounds returns the first and last bookable days for the given today.
// For open-ended windows the last day is the zero time.
func (w BookingWindow) Bounds(today time.Time) (time.Time, time.Time) {
	first := dayOf(today).AddDate(0, 0, w.StartOffsetDays)
	if w.OpenEnded {
		return first, time.Time{}
	}
	return first, first.AddDate(0, 0, w.LengthDays)
}

// Contains reports whether date falls inside the window. Membership is
// decided on calendar days, so the two sides may carry different
// locations (service dates parse as UTC, today follows the clinic zone).
func (w BookingWindow) Contains(today, date time.Time) bool {
	first, last := w.Bounds(today)
	if dayBefore(date, first) {
		return false
	}
	if w.OpenEnded {
		return true
	}
	return !dayBefore(last, date)
}

// dayBefore reports whether a's calendar date precedes b's, each read in
// its own location.
func dayBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package utils

import (
	"fmt"
	"math"
	"time"
)

// StartOfDay returns the same date at 00:00 in the same timezone.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays returns the date days ahead (or behind) at 00:00, keeping the
// timezone.
func AddDays(t time.Time, days int) time.Time {
	return StartOfDay(t.AddDate(0, 0, days))
}

// DaysBetween counts whole days from one date to another; negative when
// to precedes from. Rounding absorbs DST-shortened and -lengthened days.
func DaysBetween(from, to time.Time) int {
	diff := StartOfDay(to).Sub(StartOfDay(from))
	return int(math.Round(diff.Hours() / 24))
}

// ParseClockMinutes parses "15:04" or "15:04:05" into minutes from
// midnight.
func ParseClockMinutes(str string) (int, error) {
	parsed, err := time.Parse("15:04", str)
	if err != nil {
		parsed, err = time.Parse("15:04:05", str)
		if err != nil {
			return 0, fmt.Errorf("failed to parse clock time %q: %v", str, err)
		}
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AtMinutes places a clock offset onto a date: date 00:00 plus the given
// minutes.
func AtMinutes(date time.Time, minutes int) time.Time {
	return StartOfDay(date).Add(time.Duration(minutes) * time.Minute)
}

package domain

import "time"

// Slot is one ranked candidate: a day (and chair, at chair granularity)
// that still covers the requested duration, with the projected clock
// time where booked time leaves off. Slots are computed per request and
// never persisted.
type Slot struct {
	Location         string    `json:"location"`
	ChairID          string    `json:"chairId,omitempty"`
	Date             time.Time `json:"date"`
	NextAvailable    time.Time `json:"nextAvailable"`
	RemainingMinutes int       `json:"remainingMinutes"`
	UtilizationPct   float64   `json:"utilizationPct"`
}

// RankedSlots is the result of a find-slots query. NoCapacity set with
// an empty slot list is a valid outcome, not an error.
type RankedSlots struct {
	Slots      []Slot `json:"slots"`
	NoCapacity bool   `json:"noCapacity"`
}

// SlotQuery asks for the best open slots at a location. ChairID narrows
// the search to one chair and only applies at chair granularity.
type SlotQuery struct {
	Location        string
	ChairID         string
	DurationMinutes int
}

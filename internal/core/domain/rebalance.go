package domain

import "time"

// RebalanceQuery reassigns a location's appointments across its most
// open days. Days is the size of the target day pool; zero means the
// default.
type RebalanceQuery struct {
	Location string
	Days     int
}

// Reassignment maps one appointment to its assigned day. DaysMoved is
// assigned minus original in whole days and may be negative.
type Reassignment struct {
	AppointmentID int       `json:"appointmentId"`
	OriginalDate  time.Time `json:"originalDate"`
	AssignedDate  time.Time `json:"assignedDate"`
	DaysMoved     int       `json:"daysMoved"`
}

// RebalanceDay is one day of the ranked pool with its capacity before
// reassignment and the minutes the plan put on it. On the overflow day
// AssignedMinutes may exceed RemainingBefore.
type RebalanceDay struct {
	Date             time.Time `json:"date"`
	RemainingBefore  int       `json:"remainingBeforeMinutes"`
	AssignedMinutes  int       `json:"assignedMinutes"`
	OverflowReceiver bool      `json:"overflowReceiver"`
}

type RebalancePlan struct {
	Assignments []Reassignment `json:"assignments"`
	Days        []RebalanceDay `json:"days"`
}

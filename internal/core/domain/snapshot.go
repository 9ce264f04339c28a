package domain

import "time"

// ScheduleSnapshot is the normalized appointment set for one location,
// taken against a reference date. The snapshot is owned by the caller;
// the engine never keeps ambient state between requests.
type ScheduleSnapshot struct {
	Location     string        `json:"location"`
	AsOf         time.Time     `json:"asOf"`
	Appointments []Appointment `json:"appointments"`
}

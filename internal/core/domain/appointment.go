package domain

import "time"

type AppointmentStatus string

const (
	AppointmentStatusComplete  AppointmentStatus = "Complete"
	AppointmentStatusActive    AppointmentStatus = "Active"
	AppointmentStatusCancelled AppointmentStatus = "Cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "No Show"
)

// CountsTowardCapacity reports whether an appointment in this status
// consumes chair time.
func (s AppointmentStatus) CountsTowardCapacity() bool {
	return s == AppointmentStatusComplete || s == AppointmentStatusActive
}

type RecordColumn string

const (
	ColumnLocation   RecordColumn = "location"
	ColumnChairID    RecordColumn = "chair_id"
	ColumnStatus     RecordColumn = "status"
	ColumnStartTime  RecordColumn = "start_time"
	ColumnEndTime    RecordColumn = "end_time"
	ColumnMedication RecordColumn = "med_name"
)

// RequiredColumns lists the columns that must be present somewhere in an
// upstream record set. CreatedDate is optional.
func RequiredColumns() []RecordColumn {
	return []RecordColumn{
		ColumnLocation,
		ColumnChairID,
		ColumnStatus,
		ColumnStartTime,
		ColumnEndTime,
		ColumnMedication,
	}
}

// AppointmentRecord is one raw upstream row. Nil fields are values the
// upstream omitted or sent as null.
type AppointmentRecord struct {
	Location    *string
	ChairID     *string
	Status      *string
	StartTime   *time.Time
	EndTime     *time.Time
	CreatedDate *time.Time
	Medication  *string
}

// Appointment is a normalized record. ID is the record's index within
// the normalized list and is stable for a fixed input.
type Appointment struct {
	ID              int               `json:"id"`
	Location        string            `json:"location"`
	ChairID         string            `json:"chairId"`
	Medication      string            `json:"medication"`
	Status          AppointmentStatus `json:"status"`
	DurationMinutes int               `json:"durationMinutes"`
	ServiceDate     time.Time         `json:"serviceDate"`
	CreatedDate     time.Time         `json:"createdDate,omitempty"`
}

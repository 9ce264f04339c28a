package optimizer_service

import (
	"time"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/utils"
)

// NormalizeRecords turns raw upstream rows into the canonical
// appointment list: capacity-consuming statuses only, computed
// durations, service dates inside the booking window and off holidays.
// A required column missing from every row fails with SchemaError; a row
// missing a value in a present column is dropped. Surviving records get
// sequential IDs.
func NormalizeRecords(records []domain.AppointmentRecord, today time.Time, cfg domain.OptimizerConfig, isHoliday func(time.Time) bool) ([]domain.Appointment, error) {
	appointments := make([]domain.Appointment, 0, len(records))
	if len(records) == 0 {
		return appointments, nil
	}

	if col, missing := missingColumn(records); missing {
		return nil, domain.SchemaError{Column: col}
	}

	for _, r := range records {
		if r.Location == nil || r.ChairID == nil || r.Status == nil ||
			r.StartTime == nil || r.EndTime == nil || r.Medication == nil {
			continue
		}

		status := domain.AppointmentStatus(*r.Status)
		if !status.CountsTowardCapacity() {
			continue
		}

		// Negative spans mean a malformed row, not a zero-length visit
		duration := int(r.EndTime.Sub(*r.StartTime).Minutes())
		if duration < 0 {
			continue
		}

		serviceDate := utils.StartOfDay(*r.StartTime)
		if !cfg.Window.Contains(today, serviceDate) {
			continue
		}
		if isHoliday(serviceDate) {
			continue
		}

		var created time.Time
		if r.CreatedDate != nil {
			created = *r.CreatedDate
		}

		appointments = append(appointments, domain.Appointment{
			ID:              len(appointments),
			Location:        *r.Location,
			ChairID:         *r.ChairID,
			Medication:      *r.Medication,
			Status:          status,
			DurationMinutes: duration,
			ServiceDate:     serviceDate,
			CreatedDate:     created,
		})
	}

	return appointments, nil
}

// missingColumn scans the record set once and reports the first required
// column with no value in any row.
func missingColumn(records []domain.AppointmentRecord) (domain.RecordColumn, bool) {
	present := make(map[domain.RecordColumn]bool, 6)
	for _, r := range records {
		if r.Location != nil {
			present[domain.ColumnLocation] = true
		}
		if r.ChairID != nil {
			present[domain.ColumnChairID] = true
		}
		if r.Status != nil {
			present[domain.ColumnStatus] = true
		}
		if r.StartTime != nil {
			present[domain.ColumnStartTime] = true
		}
		if r.EndTime != nil {
			present[domain.ColumnEndTime] = true
		}
		if r.Medication != nil {
			present[domain.ColumnMedication] = true
		}
	}

	for _, col := range domain.RequiredColumns() {
		if !present[col] {
			return col, true
		}
	}
	return "", false
}

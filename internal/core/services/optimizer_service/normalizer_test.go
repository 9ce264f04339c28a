package optimizer_service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
)

var testToday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func testConfig() domain.OptimizerConfig {
	return domain.OptimizerConfig{
		CapacityModel:        domain.CapacityModelPerChairFixed,
		DailyCapacityMinutes: 540,
		ClinicOpenMinutes:    480,  // 08:00
		ClinicCloseMinutes:   1020, // 17:00
		Window:               domain.WindowTomorrowPlus(30),
		TieBreak:             domain.TieBreakEarliestTime,
		ResultCount:          3,
	}
}

func noHolidays(time.Time) bool { return false }

func record(location, chair, status, med string, start, end time.Time) domain.AppointmentRecord {
	return domain.AppointmentRecord{
		Location:   &location,
		ChairID:    &chair,
		Status:     &status,
		StartTime:  &start,
		EndTime:    &end,
		Medication: &med,
	}
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNormalizeRecordsStatusFilter(t *testing.T) {
	records := []domain.AppointmentRecord{
		record("Downtown", "1", "Complete", "Remicade", at(2025, 3, 12, 9, 0), at(2025, 3, 12, 10, 0)),
		record("Downtown", "1", "Active", "Ocrevus", at(2025, 3, 12, 10, 0), at(2025, 3, 12, 11, 0)),
		record("Downtown", "1", "Cancelled", "Remicade", at(2025, 3, 12, 11, 0), at(2025, 3, 12, 12, 0)),
		record("Downtown", "1", "No Show", "Remicade", at(2025, 3, 12, 12, 0), at(2025, 3, 12, 13, 0)),
	}

	appointments, err := NormalizeRecords(records, testToday, testConfig(), noHolidays)
	require.NoError(t, err)

	require.Len(t, appointments, 2)
	for _, a := range appointments {
		assert.True(t, a.Status.CountsTowardCapacity())
	}
}

func TestNormalizeRecordsDuration(t *testing.T) {
	records := []domain.AppointmentRecord{
		record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 9, 0), at(2025, 3, 12, 10, 30)),
		// end before start, malformed
		record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 11, 0), at(2025, 3, 12, 10, 0)),
		// zero-length stays
		record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 12, 0), at(2025, 3, 12, 12, 0)),
	}

	appointments, err := NormalizeRecords(records, testToday, testConfig(), noHolidays)
	require.NoError(t, err)

	require.Len(t, appointments, 2)
	assert.Equal(t, 90, appointments[0].DurationMinutes)
	assert.Equal(t, 0, appointments[1].DurationMinutes)
}

func TestNormalizeRecordsWindow(t *testing.T) {
	records := []domain.AppointmentRecord{
		// today itself is outside a tomorrow-plus window
		record("Downtown", "1", "Active", "Remicade", at(2025, 3, 10, 9, 0), at(2025, 3, 10, 10, 0)),
		record("Downtown", "1", "Active", "Remicade", at(2025, 3, 11, 9, 0), at(2025, 3, 11, 10, 0)),
		record("Downtown", "1", "Active", "Remicade", at(2025, 4, 10, 9, 0), at(2025, 4, 10, 10, 0)),
		record("Downtown", "1", "Active", "Remicade", at(2025, 4, 11, 9, 0), at(2025, 4, 11, 10, 0)),
	}

	appointments, err := NormalizeRecords(records, testToday, testConfig(), noHolidays)
	require.NoError(t, err)

	require.Len(t, appointments, 2)
	assert.Equal(t, at(2025, 3, 11, 0, 0), appointments[0].ServiceDate)
	assert.Equal(t, at(2025, 4, 10, 0, 0), appointments[1].ServiceDate)
}

func TestNormalizeRecordsHolidays(t *testing.T) {
	july4 := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
	isHoliday := func(d time.Time) bool { return d.Equal(july4) }

	cfg := testConfig()
	cfg.Window = domain.WindowDaysAheadAtLeast(0)

	records := []domain.AppointmentRecord{
		record("Downtown", "1", "Active", "Remicade", at(2025, 7, 3, 9, 0), at(2025, 7, 3, 10, 0)),
		record("Downtown", "1", "Active", "Remicade", at(2025, 7, 4, 9, 0), at(2025, 7, 4, 10, 0)),
	}

	appointments, err := NormalizeRecords(records, testToday, cfg, isHoliday)
	require.NoError(t, err)

	require.Len(t, appointments, 1)
	assert.Equal(t, at(2025, 7, 3, 0, 0), appointments[0].ServiceDate)
}

func TestNormalizeRecordsMissingColumn(t *testing.T) {
	records := []domain.AppointmentRecord{
		record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 9, 0), at(2025, 3, 12, 10, 0)),
		record("Downtown", "2", "Active", "Ocrevus", at(2025, 3, 12, 9, 0), at(2025, 3, 12, 11, 0)),
	}
	for i := range records {
		records[i].Medication = nil
	}

	_, err := NormalizeRecords(records, testToday, testConfig(), noHolidays)

	var schemaErr domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, domain.ColumnMedication, schemaErr.Column)
}

func TestNormalizeRecordsDropsIncompleteRows(t *testing.T) {
	full := record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 9, 0), at(2025, 3, 12, 10, 0))
	noChair := record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 10, 0), at(2025, 3, 12, 11, 0))
	noChair.ChairID = nil
	noEnd := record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 11, 0), at(2025, 3, 12, 12, 0))
	noEnd.EndTime = nil

	appointments, err := NormalizeRecords([]domain.AppointmentRecord{full, noChair, noEnd}, testToday, testConfig(), noHolidays)
	require.NoError(t, err)

	// The column exists somewhere, so gaps cost rows, not the request
	require.Len(t, appointments, 1)
	assert.Equal(t, 60, appointments[0].DurationMinutes)
}

func TestNormalizeRecordsEmptyInput(t *testing.T) {
	appointments, err := NormalizeRecords(nil, testToday, testConfig(), noHolidays)

	require.NoError(t, err)
	assert.Empty(t, appointments)
}

func TestNormalizeRecordsSequentialIDs(t *testing.T) {
	records := []domain.AppointmentRecord{
		record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 9, 0), at(2025, 3, 12, 10, 0)),
		record("Downtown", "1", "Cancelled", "Remicade", at(2025, 3, 12, 10, 0), at(2025, 3, 12, 11, 0)),
		record("Downtown", "2", "Complete", "Ocrevus", at(2025, 3, 13, 9, 0), at(2025, 3, 13, 10, 0)),
	}

	appointments, err := NormalizeRecords(records, testToday, testConfig(), noHolidays)
	require.NoError(t, err)

	require.Len(t, appointments, 2)
	assert.Equal(t, 0, appointments[0].ID)
	assert.Equal(t, 1, appointments[1].ID)
}

func TestNormalizeRecordsClinicTimezoneToday(t *testing.T) {
	// Upstream timestamps parse as UTC while today carries the clinic
	// timezone; an appointment on the first bookable day must survive
	eastern := time.FixedZone("UTC-4", -4*60*60)
	today := time.Date(2026, 8, 21, 0, 0, 0, 0, eastern)

	records := []domain.AppointmentRecord{
		record("Downtown", "1", "Active", "Remicade", at(2026, 8, 22, 9, 0), at(2026, 8, 22, 10, 0)),
	}

	appointments, err := NormalizeRecords(records, today, testConfig(), noHolidays)
	require.NoError(t, err)

	require.Len(t, appointments, 1)
	assert.Equal(t, at(2026, 8, 22, 0, 0), appointments[0].ServiceDate)
}

func TestNormalizeRecordsCreatedDateOptional(t *testing.T) {
	rec := record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 9, 0), at(2025, 3, 12, 10, 0))
	created := at(2025, 2, 1, 0, 0)
	withCreated := record("Downtown", "1", "Active", "Remicade", at(2025, 3, 12, 10, 0), at(2025, 3, 12, 11, 0))
	withCreated.CreatedDate = &created

	appointments, err := NormalizeRecords([]domain.AppointmentRecord{rec, withCreated}, testToday, testConfig(), noHolidays)
	require.NoError(t, err)

	require.Len(t, appointments, 2)
	assert.True(t, appointments[0].CreatedDate.IsZero())
	assert.Equal(t, created, appointments[1].CreatedDate)
}

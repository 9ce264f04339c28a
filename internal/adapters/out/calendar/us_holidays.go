package calendar

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// USHolidayCalendar answers holiday membership with the US federal
// holiday set. Observed days count: a holiday falling on a weekend
// closes the clinic on the shifted weekday instead.
type USHolidayCalendar struct {
	calendar *cal.Calendar
}

func NewUSHolidayCalendar() *USHolidayCalendar {
	c := &cal.Calendar{Name: "us-clinics"}
	c.AddHoliday(us.Holidays...)

	return &USHolidayCalendar{calendar: c}
}

func (c *USHolidayCalendar) IsHoliday(date time.Time) bool {
	actual, observed, _ := c.calendar.IsHoliday(date)
	return actual || observed
}

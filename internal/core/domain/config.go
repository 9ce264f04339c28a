package domain

type TieBreak string

const (
	// TieBreakEarliestTime orders by date, then projected time ascending.
	TieBreakEarliestTime TieBreak = "earliest-time"

	// TieBreakMostOpen orders by date, then remaining minutes descending.
	TieBreakMostOpen TieBreak = "most-open"
)

func (t TieBreak) Valid() bool {
	return t == TieBreakEarliestTime || t == TieBreakMostOpen
}

const (
	DefaultResultCount   = 3
	DefaultRebalanceDays = 3
)

// OptimizerConfig carries every knob the engine depends on. Together
// with a snapshot and a reference today it fully determines the output.
type OptimizerConfig struct {
	CapacityModel        CapacityModel
	DailyCapacityMinutes int
	ClinicOpenMinutes    int
	ClinicCloseMinutes   int
	Window               BookingWindow
	TieBreak             TieBreak
	ResultCount          int
}

// BusinessMinutes is the open-to-close span of one clinic day.
func (c OptimizerConfig) BusinessMinutes() int {
	return c.ClinicCloseMinutes - c.ClinicOpenMinutes
}

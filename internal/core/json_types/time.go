package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

func parseClock(str string) (time.Time, error) {
	parsedTime, err := time.Parse("15:04:05", str)
	if err != nil {
		parsedTime, err = time.Parse("15:04", str)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse clock time: %v", err)
		}
	}
	return parsedTime, nil
}

// Time is a clock time of day without a date, e.g. a clinic's opening
// hour. Accepts "15:04" and "15:04:05".
type Time struct {
	Time time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	// Strip the quotes around the string
	str := string(data[1 : len(data)-1])

	parsedTime, err := parseClock(str)
	if err != nil {
		return err
	}
	*t = Time{Time: parsedTime}
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format("15:04"))
}

func (t *Time) UnmarshalText(text []byte) error {
	parsedTime, err := parseClock(string(text))
	if err != nil {
		return err
	}
	*t = Time{Time: parsedTime}
	return nil
}

// MinutesFromMidnight positions the clock time within a day.
func (t Time) MinutesFromMidnight() int {
	return t.Time.Hour()*60 + t.Time.Minute()
}

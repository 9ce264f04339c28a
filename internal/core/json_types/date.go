package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

func parseDate(str string) (time.Time, error) {
	parsedDate, err := time.Parse(time.RFC3339, str)
	// If that fails, try the space-separated timestamp Looker emits.
	// Formats without a timezone are taken as UTC.
	if err != nil {
		parsedDate, err = time.ParseInLocation("2006-01-02 15:04:05", str, time.UTC)
		if err != nil {
			parsedDate, err = time.ParseInLocation("2006-01-02T15:04:05", str, time.UTC)
			if err != nil {
				// Last resort, a bare date without time
				parsedDate, err = time.ParseInLocation("2006-01-02", str, time.UTC)
				if err != nil {
					return time.Time{}, fmt.Errorf("failed to parse time: %v", err)
				}
			}
		}
	}

	return parsedDate, nil
}

type DateTime struct {
	Date time.Time
}

func (t *DateTime) UnmarshalJSON(data []byte) error {
	// Strip the quotes around the string
	str := string(data[1 : len(data)-1])

	parsedDate, err := parseDate(str)
	if err != nil {
		return err
	}

	*t = DateTime{Date: parsedDate}
	return nil
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format("2006-01-02T15:04:05Z07:00"))
}

type Date struct {
	Date time.Time
}

func (t *Date) UnmarshalJSON(data []byte) error {
	// Strip the quotes around the string
	str := string(data[1 : len(data)-1])

	parsedDate, err := parseDate(str)
	if err != nil {
		return err
	}

	*t = Date{Date: parsedDate}
	return nil
}

func (t Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format("2006-01-02"))
}


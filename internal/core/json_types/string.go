package json_types

import (
	"encoding/json"
	"fmt"
)

// StringOrNumber accepts a JSON string or number and keeps it as a
// string. Upstream chair identifiers arrive as either.
type StringOrNumber struct {
	Value string
}

func (s *StringOrNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Value = str
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		s.Value = num.String()
		return nil
	}

	return fmt.Errorf("value is neither string nor number: %s", string(data))
}

func (s StringOrNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

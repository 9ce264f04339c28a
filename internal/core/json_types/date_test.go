package json_types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTimeUnmarshalFormats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2025-03-10T09:00:00Z"`, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"looker timestamp", `"2025-03-10 09:00:00"`, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"no timezone", `"2025-03-10T09:00:00"`, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"bare date", `"2025-03-10"`, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dt DateTime
			require.NoError(t, json.Unmarshal([]byte(tt.in), &dt))
			assert.True(t, tt.want.Equal(dt.Date), "got %v", dt.Date)
		})
	}
}

func TestDateTimeUnmarshalRejectsGarbage(t *testing.T) {
	var dt DateTime
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &dt))
}

func TestDateMarshal(t *testing.T) {
	d := Date{Date: time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)}

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-10"`, string(out))
}

func TestTimeClock(t *testing.T) {
	var clock Time
	require.NoError(t, clock.UnmarshalText([]byte("08:00")))
	assert.Equal(t, 480, clock.MinutesFromMidnight())

	require.NoError(t, clock.UnmarshalText([]byte("17:30:00")))
	assert.Equal(t, 1050, clock.MinutesFromMidnight())

	out, err := json.Marshal(clock)
	require.NoError(t, err)
	assert.Equal(t, `"17:30"`, string(out))

	assert.Error(t, clock.UnmarshalText([]byte("half past nine")))
}

func TestStringOrNumber(t *testing.T) {
	var s StringOrNumber
	require.NoError(t, json.Unmarshal([]byte(`"Chair 3"`), &s))
	assert.Equal(t, "Chair 3", s.Value)

	require.NoError(t, json.Unmarshal([]byte(`12`), &s))
	assert.Equal(t, "12", s.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"id": 1}`), &s))
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUtilizationRatio(t *testing.T) {
	tests := []struct {
		name      string
		consumed  int
		available int
		want      float64
	}{
		{"empty day", 0, 540, 0},
		{"half booked", 270, 540, 0.5},
		{"fully booked", 540, 540, 1},
		{"overbooked clamps to one", 700, 540, 1},
		{"zero available treated as full", 100, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DailyCapacity{ConsumedMinutes: tt.consumed, AvailableMinutes: tt.available}
			assert.InDelta(t, tt.want, c.UtilizationRatio(), 1e-9)
		})
	}
}

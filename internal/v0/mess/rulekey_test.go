package mess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name      string
		breakfast bool
		lunch     bool
		supper    bool
		want      string
	}{
		{"all three", true, true, true, "X"},
		{"none", false, false, false, "0"},
		{"breakfast only", true, false, false, "B"},
		{"lunch only", false, true, false, "L"},
		{"supper only", false, false, true, "S"},
		{"breakfast and lunch", true, true, false, "B/L"},
		{"breakfast and supper", true, false, true, "B/S"},
		{"lunch and supper", false, true, true, "L/S"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveKey(tt.breakfast, tt.lunch, tt.supper))
		})
	}
}

func TestDeriveKeyFromSelection(t *testing.T) {
	assert.Equal(t, "B/S", DeriveKeyFromSelection(DaySelection{Breakfast: true, Supper: true}))
	assert.Equal(t, "X", DeriveKeyFromSelection(DaySelection{Breakfast: true, Lunch: true, Supper: true}))
}

package mess

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockEffectiveDate(t *testing.T) {
	// 20:00 UTC on June 4th is already June 5th in IST (UTC+5:30)
	instant := time.Date(2025, 6, 4, 20, 0, 0, 0, time.UTC)
	clock := NewClockAt(instant)

	assert.Equal(t, "2025-06-05", clock.Today())

	now := clock.ServerNow()
	assert.Equal(t, "2025-06-05", now.EffectiveDate)
	assert.Equal(t, TrustedTimezone, now.Timezone)

	parsed, err := time.Parse(time.RFC3339, now.ServerTime)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(instant))
}

func TestClockBeforeOffsetBoundary(t *testing.T) {
	// 18:29 UTC is 23:59 IST, still the same calendar day
	clock := NewClockAt(time.Date(2025, 6, 4, 18, 29, 0, 0, time.UTC))
	assert.Equal(t, "2025-06-04", clock.Today())

	// One minute later IST crosses midnight
	clock = NewClockAt(time.Date(2025, 6, 4, 18, 30, 0, 0, time.UTC))
	assert.Equal(t, "2025-06-05", clock.Today())
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2025-06-10"))
	assert.False(t, ValidDate("2025-6-10"))
	assert.False(t, ValidDate("2025-06-10T00:00:00"))
	assert.False(t, ValidDate("2025-13-40"))
	assert.False(t, ValidDate(""))
}

func TestMonthOf(t *testing.T) {
	assert.Equal(t, "2025-06", MonthOf("2025-06-10"))
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, "Tue", WeekdayOf("2025-06-10"))
	assert.Equal(t, "Sun", WeekdayOf("2025-06-01"))
	assert.Equal(t, "", WeekdayOf("not-a-date"))
}

func TestDatesInRange(t *testing.T) {
	dates := DatesInRange("2025-06-28", "2025-07-02")
	assert.Equal(t, []string{"2025-06-28", "2025-06-29", "2025-06-30", "2025-07-01", "2025-07-02"}, dates)

	assert.Nil(t, DatesInRange("2025-06-10", "2025-06-05"))
	assert.Nil(t, DatesInRange("junk", "2025-06-05"))

	single := DatesInRange("2025-06-10", "2025-06-10")
	assert.Equal(t, []string{"2025-06-10"}, single)
}

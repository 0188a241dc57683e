package mess

import (
	"regexp"
	"time"
)

const (
	// TrustedTimezone is the fixed zone used for the authoritative date
	TrustedTimezone = "Asia/Kolkata"

	// DateFormat is the wire format for calendar dates
	DateFormat = "2006-01-02"

	// MonthFormat is the wire format for month keys
	MonthFormat = "2006-01"
)

// DatePattern validates incoming date strings before parsing
var DatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Clock supplies the authoritative "today" in a fixed time zone,
// independent of client clocks. All date gating goes through it.
type Clock struct {
	location *time.Location
	nowFunc  func() time.Time
}

// NewClock creates a trusted clock pinned to Asia/Kolkata.
// Falls back to a fixed UTC+5:30 offset if tzdata is unavailable.
func NewClock() *Clock {
	loc, err := time.LoadLocation(TrustedTimezone)
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+30*60)
	}
	return &Clock{location: loc, nowFunc: time.Now}
}

// NewClockAt creates a clock with a fixed now function, for tests
func NewClockAt(now time.Time) *Clock {
	c := NewClock()
	c.nowFunc = func() time.Time { return now }
	return c
}

// Now returns the current instant in the trusted zone
func (c *Clock) Now() time.Time {
	return c.nowFunc().In(c.location)
}

// Today returns the authoritative calendar date as YYYY-MM-DD
func (c *Clock) Today() string {
	return c.Now().Format(DateFormat)
}

// ServerNow returns the trusted-time payload for clients.
// Clients poll this and must refresh their state when effectiveDate
// changes across a midnight boundary.
func (c *Clock) ServerNow() ServerNow {
	now := c.Now()
	return ServerNow{
		ServerTime:    now.Format(time.RFC3339),
		Timezone:      TrustedTimezone,
		EffectiveDate: now.Format(DateFormat),
	}
}

// MonthOf derives the YYYY-MM month key from a YYYY-MM-DD date string
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}

// WeekdayOf returns the short weekday name (Mon..Sun) of a date string.
// Returns an empty string if the date does not parse.
func WeekdayOf(date string) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return ""
	}
	return t.Format("Mon")
}

// ValidDate reports whether a string is a well-formed, parseable date
func ValidDate(date string) bool {
	if !DatePattern.MatchString(date) {
		return false
	}
	_, err := time.Parse(DateFormat, date)
	return err == nil
}

// addDays shifts a date string by n calendar days
func addDays(date string, n int) string {
	t, err := time.Parse(DateFormat, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(DateFormat)
}

// DatesInRange returns every date in the closed range [from, to].
// Returns nil if either bound does not parse or from > to.
func DatesInRange(from, to string) []string {
	start, err := time.Parse(DateFormat, from)
	if err != nil {
		return nil
	}
	end, err := time.Parse(DateFormat, to)
	if err != nil {
		return nil
	}
	if start.After(end) {
		return nil
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateFormat))
	}
	return dates
}

package mess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeReportSingleDayTotal(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)
	engine := NewEngine(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))

	// a@x.com has B and L marked, supper off, on 2025-06-10
	_, err := repo.Toggle("a@x.com", "2025-06-10", MealSupper)
	require.NoError(t, err)

	reports, err := engine.RangeReport("2025-06-10", "2025-06-10", "2025-06-05", nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "B/L", reports[0].Keys["2025-06-10"])
	assert.Equal(t, "0.65", reports[0].Total)

	// Toggle supper back on: key becomes X, total 1.00
	_, err = repo.Toggle("a@x.com", "2025-06-10", MealSupper)
	require.NoError(t, err)

	reports, err = engine.RangeReport("2025-06-10", "2025-06-10", "2025-06-05", nil)
	require.NoError(t, err)
	assert.Equal(t, "X", reports[0].Keys["2025-06-10"])
	assert.Equal(t, "1.00", reports[0].Total)
}

func TestRangeReportExceptionForcesZero(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)
	engine := NewEngine(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "b@x.com"))
	_, err := repo.CreateException("2025-06", "b@x.com", "2025-06-15", "2025-06-20")
	require.NoError(t, err)

	// Real selection exists on 2025-06-12 but the day is outside the
	// member's only window, so it must report "0".
	_, err = repo.DB().Exec(`
		INSERT INTO month_meals (email, date, breakfast, lunch, supper)
		VALUES ('b@x.com', '2025-06-12', 1, 0, 0)
	`)
	require.NoError(t, err)
	_, err = repo.DB().Exec(`
		INSERT INTO month_meals (email, date, breakfast, lunch, supper)
		VALUES ('b@x.com', '2025-06-16', 1, 0, 0)
	`)
	require.NoError(t, err)

	reports, err := engine.RangeReport("2025-06-12", "2025-06-16", "2025-06-05", nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, "0", reports[0].Keys["2025-06-12"])
	assert.Equal(t, "B", reports[0].Keys["2025-06-16"])
}

func TestRangeReportAbsentDayFallback(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)
	engine := NewEngine(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))

	// First recorded meal anchors at 2025-06-08
	_, err := repo.Toggle("a@x.com", "2025-06-08", MealLunch)
	require.NoError(t, err)

	today := "2025-06-10"
	reports, err := engine.RangeReport("2025-06-05", "2025-06-12", today, nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	keys := reports[0].Keys

	// Before the first-meal anchor with no record: zero
	assert.Equal(t, "0", keys["2025-06-05"])
	// On/after the anchor with no record: full attendance
	assert.Equal(t, "X", keys["2025-06-09"])
	// The recorded day reports its real key (lunch toggled off from
	// the all-true default)
	assert.Equal(t, "B/S", keys["2025-06-08"])
	// Strictly after today with no record: full attendance
	assert.Equal(t, "X", keys["2025-06-11"])
}

func TestRangeReportNeverMarkedMemberAnchorsAtToday(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)
	engine := NewEngine(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "c@x.com"))

	// No recorded meals at all: the anchor falls back to today, so
	// today itself still bills as full attendance.
	today := "2025-06-10"
	reports, err := engine.RangeReport("2025-06-09", "2025-06-11", today, nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.Equal(t, "0", reports[0].Keys["2025-06-09"])
	assert.Equal(t, "X", reports[0].Keys["2025-06-10"])
	assert.Equal(t, "X", reports[0].Keys["2025-06-11"])
	assert.Equal(t, "2.00", reports[0].Total)
}

func TestRangeReportRejectsCrossMonthRange(t *testing.T) {
	repo := newTestRepo(t)
	engine := NewEngine(repo)

	_, err := engine.RangeReport("2025-06-28", "2025-07-03", "2025-06-05", nil)
	assert.Error(t, err)
}

func TestDayReportFallback(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)
	engine := NewEngine(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))
	require.NoError(t, repo.AddRosterMember("2025-06", "b@x.com"))

	// a@x.com has a record anchoring a first meal date; b@x.com does
	// not. The single-day fallback ignores the anchor either way.
	_, err := repo.Toggle("a@x.com", "2025-06-08", MealLunch)
	require.NoError(t, err)

	today := "2025-06-10"

	// Future day, no record on it: X for everyone
	markings, err := engine.DayReport("2025-06-12", today, nil)
	require.NoError(t, err)
	require.Len(t, markings, 2)
	for _, m := range markings {
		assert.Equal(t, "X", m.Key)
	}

	// Past day, no record: 0 regardless of the anchor
	markings, err = engine.DayReport("2025-06-09", today, nil)
	require.NoError(t, err)
	for _, m := range markings {
		assert.Equal(t, "0", m.Key, "member %s", m.Email)
	}

	// Recorded day reports the real key
	markings, err = engine.DayReport("2025-06-08", today, nil)
	require.NoError(t, err)
	for _, m := range markings {
		if m.Email == "a@x.com" {
			assert.Equal(t, "B/S", m.Key)
		} else {
			assert.Equal(t, "0", m.Key)
		}
	}
}

func TestWeekdayPartitionedLookup(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)
	engine := NewEngine(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))

	// 2025-06-10 is a Tuesday; give Tuesdays a custom X weight
	require.NoError(t, repo.SetPointValue("Tue", "X", 3))

	_, err := repo.DB().Exec(`
		INSERT INTO month_meals (email, date, breakfast, lunch, supper)
		VALUES ('a@x.com', '2025-06-10', 1, 1, 1)
	`)
	require.NoError(t, err)

	reports, err := engine.RangeReport("2025-06-10", "2025-06-10", "2025-06-05", nil)
	require.NoError(t, err)
	assert.Equal(t, "3.00", reports[0].Total)
}

func TestMealCounts(t *testing.T) {
	repo := newTestRepo(t)
	engine := NewEngine(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))
	require.NoError(t, repo.AddRosterMember("2025-06", "b@x.com"))

	// a@x.com opts out of supper on the 10th; b@x.com is untouched
	// and counts as full attendance for an open day.
	_, err := repo.Toggle("a@x.com", "2025-06-10", MealSupper)
	require.NoError(t, err)

	counts, err := engine.MealCounts([]string{"2025-06-10"}, "2025-06-05")
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 2, counts[0].Breakfast)
	assert.Equal(t, 2, counts[0].Lunch)
	assert.Equal(t, 1, counts[0].Supper)
}

func TestRangeReportCSVLayout(t *testing.T) {
	reports := []MemberReport{
		{
			Email: "a@x.com",
			Name:  "Asha",
			Keys:  map[string]string{"2025-06-10": "X", "2025-06-11": "B/L"},
			Total: "1.65",
		},
	}
	data, err := RangeReportCSV(reports, []string{"2025-06-10", "2025-06-11"})
	require.NoError(t, err)

	assert.Equal(t,
		"Name,2025-06-10,2025-06-11,Total Points\nAsha,X,B/L,1.65\n",
		string(data))
}

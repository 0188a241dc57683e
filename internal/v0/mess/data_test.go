package mess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleDefaultsAndAsymmetry(t *testing.T) {
	repo := newTestRepo(t)

	// First toggle on an untouched date: the ledger starts all-true,
	// so flipping supper turns it off.
	value, err := repo.Toggle("a@x.com", "2025-06-10", MealSupper)
	require.NoError(t, err)
	assert.False(t, value)

	sel, err := repo.GetDaySelection("a@x.com", "2025-06-10")
	require.NoError(t, err)
	require.NotNil(t, sel)
	assert.True(t, sel.Breakfast)
	assert.True(t, sel.Lunch)
	assert.False(t, sel.Supper)

	// The mirror starts all-false and only the named meal takes the
	// ledger's new value; the other two stay false, not true.
	mirror, err := repo.GetMirrorSelection("a@x.com", "2025-06-10")
	require.NoError(t, err)
	require.NotNil(t, mirror)
	assert.False(t, mirror.Breakfast)
	assert.False(t, mirror.Lunch)
	assert.False(t, mirror.Supper)
}

func TestToggleIdempotence(t *testing.T) {
	repo := newTestRepo(t)

	first, err := repo.Toggle("a@x.com", "2025-06-10", MealLunch)
	require.NoError(t, err)
	second, err := repo.Toggle("a@x.com", "2025-06-10", MealLunch)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, second, "double toggle returns to the all-true default")

	sel, err := repo.GetDaySelection("a@x.com", "2025-06-10")
	require.NoError(t, err)
	assert.True(t, sel.Breakfast)
	assert.True(t, sel.Lunch)
	assert.True(t, sel.Supper)
}

func TestToggleLeavesOtherDatesAlone(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Toggle("a@x.com", "2025-06-10", MealBreakfast)
	require.NoError(t, err)
	_, err = repo.Toggle("a@x.com", "2025-06-11", MealSupper)
	require.NoError(t, err)

	sel, err := repo.GetDaySelection("a@x.com", "2025-06-10")
	require.NoError(t, err)
	assert.False(t, sel.Breakfast)
	assert.True(t, sel.Supper)

	sel, err = repo.GetDaySelection("a@x.com", "2025-06-11")
	require.NoError(t, err)
	assert.True(t, sel.Breakfast)
	assert.False(t, sel.Supper)
}

func TestGetFirstMealDate(t *testing.T) {
	repo := newTestRepo(t)

	date, err := repo.GetFirstMealDate("a@x.com")
	require.NoError(t, err)
	assert.Empty(t, date)

	_, err = repo.Toggle("a@x.com", "2025-06-15", MealLunch)
	require.NoError(t, err)
	_, err = repo.Toggle("a@x.com", "2025-06-08", MealLunch)
	require.NoError(t, err)

	date, err = repo.GetFirstMealDate("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-08", date)
}

func TestExceptionDuplicatesRejected(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.AddRosterMember("2025-06", "b@x.com"))

	_, err := repo.CreateException("2025-06", "b@x.com", "2025-06-15", "2025-06-20")
	require.NoError(t, err)

	exists, err := repo.ExceptionExists("2025-06", "b@x.com", "2025-06-15", "2025-06-20")
	require.NoError(t, err)
	assert.True(t, exists)

	// The table's unique constraint backs up the handler check
	_, err = repo.CreateException("2025-06", "b@x.com", "2025-06-15", "2025-06-20")
	assert.Error(t, err)

	// A different range for the same member is fine
	_, err = repo.CreateException("2025-06", "b@x.com", "2025-06-25", "2025-06-28")
	require.NoError(t, err)
}

func TestRosterAddRemove(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.AddRosterMember("2025-06", "A@X.com"))
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com")) // no-op duplicate

	roster, err := repo.GetRoster("2025-06")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, roster)

	require.NoError(t, repo.RemoveRosterMember("2025-06", "a@x.com"))
	roster, err = repo.GetRoster("2025-06")
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestPointTableSeedAndEdit(t *testing.T) {
	repo := newTestRepo(t)
	seedPoints(t, repo)

	table, err := repo.GetPointTable()
	require.NoError(t, err)
	require.Len(t, table, 7)
	assert.Equal(t, 1.0, table["Mon"]["X"])
	assert.Equal(t, 0.65, table["Sun"]["B/L"])

	// Admin edits survive re-seeding
	require.NoError(t, repo.SetPointValue("Mon", "X", 2))
	require.NoError(t, SeedDefaultPointTable(repo))
	table, err = repo.GetPointTable()
	require.NoError(t, err)
	assert.Equal(t, 2.0, table["Mon"]["X"])
}

func TestNotificationsPurge(t *testing.T) {
	repo := newTestRepo(t)

	n, err := repo.CreateNotification("Menu change", "Special dinner on Friday")
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)

	active, err := repo.ListActiveNotifications()
	require.NoError(t, err)
	assert.Len(t, active, 1)

	// Force-expire and purge
	_, err = repo.DB().Exec("UPDATE notifications SET expires_at = datetime('now', '-1 day')")
	require.NoError(t, err)

	purged, err := repo.PurgeExpiredNotifications()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	active, err = repo.ListActiveNotifications()
	require.NoError(t, err)
	assert.Empty(t, active)
}

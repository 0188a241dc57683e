package mess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateLockedOrPast(t *testing.T) {
	repo := newTestRepo(t)
	gate := NewGate(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))

	today := "2025-06-05"

	reason, err := gate.Authorize("a@x.com", "2025-06-05", today)
	require.NoError(t, err)
	assert.Equal(t, ReasonLockedOrPast, reason)

	reason, err = gate.Authorize("a@x.com", "2025-06-01", today)
	require.NoError(t, err)
	assert.Equal(t, ReasonLockedOrPast, reason)

	reason, err = gate.Authorize("a@x.com", "2025-06-06", today)
	require.NoError(t, err)
	assert.Empty(t, reason)
}

func TestGateRosterMembership(t *testing.T) {
	repo := newTestRepo(t)
	gate := NewGate(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))

	reason, err := gate.Authorize("b@x.com", "2025-06-10", "2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotInMonthlyList, reason)

	// Case-insensitive matching
	reason, err = gate.Authorize("A@X.COM", "2025-06-10", "2025-06-05")
	require.NoError(t, err)
	assert.Empty(t, reason)

	// Month key derives from the target date, so July is ungated by
	// the June roster
	reason, err = gate.Authorize("a@x.com", "2025-07-10", "2025-06-05")
	require.NoError(t, err)
	assert.Equal(t, ReasonNotInMonthlyList, reason)
}

func TestGateExceptionWindows(t *testing.T) {
	repo := newTestRepo(t)
	gate := NewGate(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "b@x.com"))
	_, err := repo.CreateException("2025-06", "b@x.com", "2025-06-15", "2025-06-20")
	require.NoError(t, err)

	today := "2025-06-05"

	// Outside every window
	reason, err := gate.Authorize("b@x.com", "2025-06-12", today)
	require.NoError(t, err)
	assert.Equal(t, ReasonExceptionBlock, reason)

	// Window bounds are inclusive
	for _, date := range []string{"2025-06-15", "2025-06-17", "2025-06-20"} {
		reason, err = gate.Authorize("b@x.com", date, today)
		require.NoError(t, err)
		assert.Empty(t, reason, "date %s should be allowed", date)
	}

	reason, err = gate.Authorize("b@x.com", "2025-06-21", today)
	require.NoError(t, err)
	assert.Equal(t, ReasonExceptionBlock, reason)
}

func TestGateNoWindowsIsUnrestricted(t *testing.T) {
	repo := newTestRepo(t)
	gate := NewGate(repo)
	require.NoError(t, repo.AddRosterMember("2025-06", "a@x.com"))

	reason, err := gate.Authorize("a@x.com", "2025-06-25", "2025-06-05")
	require.NoError(t, err)
	assert.Empty(t, reason)
}

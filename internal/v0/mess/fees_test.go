package mess

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingNeverNegative(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.UpsertFee("a@x.com", "2025-05", 1000, 1200))

	record, err := repo.GetFee("a@x.com", "2025-05")
	require.NoError(t, err)
	assert.Equal(t, 0.0, record.Pending)
}

func TestBuildFeeSummary(t *testing.T) {
	records := []FeeRecord{
		{Month: "2025-06", Fee: 1500, Paid: 500, Pending: 1000},
		{Month: "2025-05", Fee: 1400, Paid: 1000, Pending: 400},
		{Month: "2025-04", Fee: 1300, Paid: 1300, Pending: 0},
	}

	summary := BuildFeeSummary(records, "2025-06")
	assert.Equal(t, 1500.0, summary.Fee)
	assert.Equal(t, 1000.0, summary.Pending)
	assert.Equal(t, 1400.0, summary.PendingTotal)
	assert.Equal(t, 400.0, summary.PreviousPending)
	// Total due is this month's full fee plus earlier months' balance
	assert.Equal(t, 1900.0, summary.TotalDue)
}

func TestBuildFeeSummaryNoRecordForMonth(t *testing.T) {
	records := []FeeRecord{
		{Month: "2025-05", Fee: 1400, Paid: 1000, Pending: 400},
	}

	summary := BuildFeeSummary(records, "2025-06")
	assert.Equal(t, 0.0, summary.Fee)
	assert.Equal(t, 400.0, summary.PendingTotal)
	assert.Equal(t, 400.0, summary.PreviousPending)
	assert.Equal(t, 400.0, summary.TotalDue)
}

func TestFeeEditRecomputesPendingTotal(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.UpsertFee("a@x.com", "2025-05", 1000, 200))
	require.NoError(t, repo.UpsertFee("a@x.com", "2025-06", 1500, 0))

	records, err := repo.GetMemberFees("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 2300.0, PendingTotal(records))

	// Paying off May drops the carried balance on the next read
	require.NoError(t, repo.UpsertFee("a@x.com", "2025-05", 1000, 1000))
	records, err = repo.GetMemberFees("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, PendingTotal(records))
}

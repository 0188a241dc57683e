package mess

import (
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// newTestRepo opens an in-memory database seeded with the migration
// schema. One connection only, so every query sees the same memory DB.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../databases/migrations/mess/000001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return NewRepository(db)
}

// seedPoints writes the default point table
func seedPoints(t *testing.T, repo *Repository) {
	t.Helper()
	require.NoError(t, SeedDefaultPointTable(repo))
}

// fixedClock returns a clock whose trusted date is the given day at noon IST
func fixedClock(t *testing.T, date string) *Clock {
	t.Helper()
	parsed, err := time.Parse(DateFormat, date)
	require.NoError(t, err)
	ist := time.FixedZone("IST", 5*3600+30*60)
	noon := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, ist)
	return NewClockAt(noon)
}

package auth

import (
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../databases/migrations/auth/000001_init.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return NewRepository(db)
}

func TestGenerateToken(t *testing.T) {
	raw, hash, err := GenerateToken()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, TokenPrefix))
	assert.Equal(t, HashToken(raw), hash)
	assert.NotContains(t, hash, raw)

	raw2, _, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
}

func TestTokenLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.CreateToken("kitchen display", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, created.RawToken)
	assert.Equal(t, "kitchen display", created.Label)

	// Valid while unrevoked
	token, err := repo.ValidateToken(created.RawToken)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, created.ID, token.ID)

	// Unknown raw tokens don't validate
	token, err = repo.ValidateToken(TokenPrefix + "nope")
	require.NoError(t, err)
	assert.Nil(t, token)

	// Revocation takes effect immediately
	require.NoError(t, repo.RevokeToken(created.ID))
	token, err = repo.ValidateToken(created.RawToken)
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestTokenExpiry(t *testing.T) {
	repo := newTestRepo(t)

	past := time.Now().Add(-time.Hour)
	created, err := repo.CreateToken("stale", &past)
	require.NoError(t, err)

	token, err := repo.ValidateToken(created.RawToken)
	require.NoError(t, err)
	assert.Nil(t, token)
}

func TestUserLifecycle(t *testing.T) {
	repo := newTestRepo(t)

	user, err := repo.CreateUser("New@Student.Com", "New Student")
	require.NoError(t, err)
	assert.Equal(t, "new@student.com", user.Email)
	assert.Equal(t, RoleStudent, user.Role)
	assert.Equal(t, StatusPending, user.Status)

	// Email lookup is case-insensitive
	found, err := repo.GetUserByEmail("NEW@STUDENT.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, repo.UpdateUserStatus(user.ID, StatusApproved))
	found, err = repo.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, found.Status)

	// Missing users come back nil, not an error
	missing, err := repo.GetUserByID(9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetAllPushTokens(t *testing.T) {
	repo := newTestRepo(t)

	approved, err := repo.CreateUser("a@x.com", "A")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateUserStatus(approved.ID, StatusApproved))
	require.NoError(t, repo.SetPushToken(approved.ID, "tok-1"))

	// Pending users' tokens are excluded
	pending, err := repo.CreateUser("b@x.com", "B")
	require.NoError(t, err)
	require.NoError(t, repo.SetPushToken(pending.ID, "tok-2"))

	tokens, err := repo.GetAllPushTokens()
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-1"}, tokens)
}

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/mr-tron/base58"
)

const (
	// TokenPrefix is prepended to all display tokens for identification
	TokenPrefix = "mess_"

	// TokenByteLength is the number of random bytes in a token
	TokenByteLength = 32
)

// GenerateToken creates a new random display token.
// Returns the raw token (shown once) and its SHA-256 hash (stored).
func GenerateToken() (rawToken, tokenHash string, err error) {
	bytes := make([]byte, TokenByteLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", "", err
	}

	rawToken = TokenPrefix + base58.Encode(bytes)
	tokenHash = HashToken(rawToken)
	return rawToken, tokenHash, nil
}

// HashToken returns the hex-encoded SHA-256 hash of a raw token
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// CreateToken creates a new display token with the given label
func (r *Repository) CreateToken(label string, expiresAt *time.Time) (*TokenWithRaw, error) {
	rawToken, tokenHash, err := GenerateToken()
	if err != nil {
		return nil, err
	}

	result, err := r.db.Exec(`
		INSERT INTO tokens (token_hash, label, expires_at) VALUES (?, ?, ?)
	`, tokenHash, label, expiresAt)
	if err != nil {
		return nil, err
	}
	id, _ := result.LastInsertId()

	token, err := r.GetTokenByID(id)
	if err != nil {
		return nil, err
	}

	return &TokenWithRaw{Token: *token, RawToken: rawToken}, nil
}

// GetTokenByID returns a token by ID
func (r *Repository) GetTokenByID(id int64) (*Token, error) {
	var t Token
	var expiresAt, revokedAt sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, token_hash, label, expires_at, revoked_at, created_at
		FROM tokens WHERE id = ?
	`, id).Scan(&t.ID, &t.TokenHash, &t.Label, &expiresAt, &revokedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.ExpiresAt = ScanNullableTime(expiresAt)
	t.RevokedAt = ScanNullableTime(revokedAt)
	return &t, nil
}

// ValidateToken looks up a raw token and returns it if it is active.
// Revoked or expired tokens return nil.
func (r *Repository) ValidateToken(rawToken string) (*Token, error) {
	tokenHash := HashToken(rawToken)

	var t Token
	var expiresAt, revokedAt sql.NullTime
	err := r.db.QueryRow(`
		SELECT id, token_hash, label, expires_at, revoked_at, created_at
		FROM tokens WHERE token_hash = ?
	`, tokenHash).Scan(&t.ID, &t.TokenHash, &t.Label, &expiresAt, &revokedAt, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.ExpiresAt = ScanNullableTime(expiresAt)
	t.RevokedAt = ScanNullableTime(revokedAt)

	if t.RevokedAt != nil {
		return nil, nil
	}
	if t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return &t, nil
}

// ListTokens returns all display tokens, newest first
func (r *Repository) ListTokens() ([]Token, error) {
	rows, err := r.db.Query(`
		SELECT id, token_hash, label, expires_at, revoked_at, created_at
		FROM tokens
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []Token
	for rows.Next() {
		var t Token
		var expiresAt, revokedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.TokenHash, &t.Label, &expiresAt, &revokedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.ExpiresAt = ScanNullableTime(expiresAt)
		t.RevokedAt = ScanNullableTime(revokedAt)
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// RevokeToken marks a token as revoked
func (r *Repository) RevokeToken(id int64) error {
	_, err := r.db.Exec(`
		UPDATE tokens SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL
	`, time.Now(), id)
	return err
}

// DeleteToken removes a token entirely
func (r *Repository) DeleteToken(id int64) error {
	_, err := r.db.Exec("DELETE FROM tokens WHERE id = ?", id)
	return err
}

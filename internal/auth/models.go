package auth

import (
	"database/sql"
	"time"
)

// Role represents user permission levels
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Status represents the account approval state
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Provider represents OAuth providers
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

// User represents a mess member account
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	Status      Status    `json:"status"`
	Year        *string   `json:"year,omitempty"`
	Branch      *string   `json:"branch,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	PushToken   *string   `json:"-"` // FCM registration token, never exposed
	CreatedAt   time.Time `json:"createdAt"`
}

// OAuthIdentity links a user to an OAuth provider
type OAuthIdentity struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Provider   Provider  `json:"provider"`
	ProviderID string    `json:"providerId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Session represents a server-side user session
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// OAuthState represents a CSRF protection state
type OAuthState struct {
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token represents an admin-issued display token. The kitchen counter
// display uses one to read meal counts without a browser session.
type Token struct {
	ID        int64      `json:"id"`
	TokenHash string     `json:"-"` // Never expose
	Label     string     `json:"label"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// TokenWithRaw includes the raw token value (only returned on creation)
type TokenWithRaw struct {
	Token
	RawToken string `json:"token"`
}

// ProfileUpdateRequest represents the request body for updating a profile
type ProfileUpdateRequest struct {
	DisplayName *string `json:"displayName"`
	Year        *string `json:"year"`
	Branch      *string `json:"branch"`
	Phone       *string `json:"phone"`
}

// StatusUpdateRequest represents the request body for approving or rejecting a user
type StatusUpdateRequest struct {
	Status Status `json:"status" binding:"required"`
}

// RoleUpdateRequest represents the request body for changing a user's role
type RoleUpdateRequest struct {
	Role Role `json:"role" binding:"required"`
}

// TokenCreateRequest represents the request body for creating a display token
type TokenCreateRequest struct {
	Label     string     `json:"label" binding:"required"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// NullableString helper for scanning nullable string
func ScanNullableString(n sql.NullString) *string {
	if n.Valid {
		return &n.String
	}
	return nil
}

// NullableTime helper for scanning nullable time
func ScanNullableTime(n sql.NullTime) *time.Time {
	if n.Valid {
		return &n.Time
	}
	return nil
}

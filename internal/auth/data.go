package auth

import (
	"database/sql"
	"strings"
)

// Repository provides access to auth-related database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new auth repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// EnableWAL enables Write-Ahead Logging mode for better concurrent performance
func (r *Repository) EnableWAL() error {
	_, err := r.db.Exec("PRAGMA journal_mode=WAL")
	return err
}

// --- User Operations ---

// GetUserByID returns a user by ID
func (r *Repository) GetUserByID(id int64) (*User, error) {
	var u User
	var year, branch, phone, pushToken sql.NullString
	err := r.db.QueryRow(`
		SELECT id, email, display_name, role, status, year, branch, phone, push_token, created_at
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Status, &year, &branch, &phone, &pushToken, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Year = ScanNullableString(year)
	u.Branch = ScanNullableString(branch)
	u.Phone = ScanNullableString(phone)
	u.PushToken = ScanNullableString(pushToken)
	return &u, nil
}

// GetUserByEmail returns a user by email. Emails are a case-insensitive key.
func (r *Repository) GetUserByEmail(email string) (*User, error) {
	var u User
	var year, branch, phone, pushToken sql.NullString
	err := r.db.QueryRow(`
		SELECT id, email, display_name, role, status, year, branch, phone, push_token, created_at
		FROM users WHERE email = ?
	`, strings.ToLower(email)).Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Status, &year, &branch, &phone, &pushToken, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Year = ScanNullableString(year)
	u.Branch = ScanNullableString(branch)
	u.Phone = ScanNullableString(phone)
	u.PushToken = ScanNullableString(pushToken)
	return &u, nil
}

// GetAllUsers returns all users, newest first
func (r *Repository) GetAllUsers() ([]User, error) {
	rows, err := r.db.Query(`
		SELECT id, email, display_name, role, status, year, branch, phone, push_token, created_at
		FROM users
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// GetUsersByStatus returns all users with the given status
func (r *Repository) GetUsersByStatus(status Status) ([]User, error) {
	rows, err := r.db.Query(`
		SELECT id, email, display_name, role, status, year, branch, phone, push_token, created_at
		FROM users
		WHERE status = ?
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var u User
		var year, branch, phone, pushToken sql.NullString
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.Status, &year, &branch, &phone, &pushToken, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Year = ScanNullableString(year)
		u.Branch = ScanNullableString(branch)
		u.Phone = ScanNullableString(phone)
		u.PushToken = ScanNullableString(pushToken)
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser creates a new user. New accounts start as pending students;
// an admin has to approve them before they can mark meals.
func (r *Repository) CreateUser(email, displayName string) (*User, error) {
	result, err := r.db.Exec(`
		INSERT INTO users (email, display_name, role, status) VALUES (?, ?, ?, ?)
	`, strings.ToLower(email), displayName, RoleStudent, StatusPending)
	if err != nil {
		return nil, err
	}
	id, _ := result.LastInsertId()
	return r.GetUserByID(id)
}

// UpdateUserStatus sets the approval status of a user
func (r *Repository) UpdateUserStatus(id int64, status Status) error {
	_, err := r.db.Exec("UPDATE users SET status = ? WHERE id = ?", status, id)
	return err
}

// UpdateUserRole sets the role of a user
func (r *Repository) UpdateUserRole(id int64, role Role) error {
	_, err := r.db.Exec("UPDATE users SET role = ? WHERE id = ?", role, id)
	return err
}

// UpdateProfile updates the user's own profile fields
func (r *Repository) UpdateProfile(id int64, displayName, year, branch, phone *string) error {
	if displayName != nil {
		if _, err := r.db.Exec("UPDATE users SET display_name = ? WHERE id = ?", *displayName, id); err != nil {
			return err
		}
	}
	if year != nil {
		if _, err := r.db.Exec("UPDATE users SET year = ? WHERE id = ?", *year, id); err != nil {
			return err
		}
	}
	if branch != nil {
		if _, err := r.db.Exec("UPDATE users SET branch = ? WHERE id = ?", *branch, id); err != nil {
			return err
		}
	}
	if phone != nil {
		if _, err := r.db.Exec("UPDATE users SET phone = ? WHERE id = ?", *phone, id); err != nil {
			return err
		}
	}
	return nil
}

// SetPushToken stores the FCM registration token for a user
func (r *Repository) SetPushToken(id int64, token string) error {
	_, err := r.db.Exec("UPDATE users SET push_token = ? WHERE id = ?", token, id)
	return err
}

// GetAllPushTokens returns the distinct non-empty push tokens of approved users
func (r *Repository) GetAllPushTokens() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT DISTINCT push_token FROM users
		WHERE status = ? AND push_token IS NOT NULL AND push_token != ''
	`, StatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// DeleteUser removes a user account and its sessions and identities
func (r *Repository) DeleteUser(id int64) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec("DELETE FROM sessions WHERE user_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM oauth_identities WHERE user_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// --- OAuth Identity Operations ---

// GetOAuthIdentity returns an OAuth identity by provider and provider ID
func (r *Repository) GetOAuthIdentity(provider Provider, providerID string) (*OAuthIdentity, error) {
	var o OAuthIdentity
	err := r.db.QueryRow(`
		SELECT id, user_id, provider, provider_id, created_at
		FROM oauth_identities
		WHERE provider = ? AND provider_id = ?
	`, provider, providerID).Scan(&o.ID, &o.UserID, &o.Provider, &o.ProviderID, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOAuthIdentity creates a new OAuth identity
func (r *Repository) CreateOAuthIdentity(userID int64, provider Provider, providerID string) (*OAuthIdentity, error) {
	result, err := r.db.Exec(`
		INSERT INTO oauth_identities (user_id, provider, provider_id) VALUES (?, ?, ?)
	`, userID, provider, providerID)
	if err != nil {
		return nil, err
	}
	id, _ := result.LastInsertId()

	var o OAuthIdentity
	err = r.db.QueryRow(`
		SELECT id, user_id, provider, provider_id, created_at
		FROM oauth_identities WHERE id = ?
	`, id).Scan(&o.ID, &o.UserID, &o.Provider, &o.ProviderID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

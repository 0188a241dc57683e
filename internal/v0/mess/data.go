package mess

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationExpiry is how long an announcement stays visible
const NotificationExpiry = 7 * 24 * time.Hour

// Repository provides access to mess-related database operations
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new mess repository
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

// --- Meal Ledger Operations ---

// GetDaySelection returns the aggregate ledger's selection for one member
// and date, or nil if no entry exists. Absence is NOT all-false; callers
// apply the fallback policy themselves.
func (r *Repository) GetDaySelection(email, date string) (*DaySelection, error) {
	var sel DaySelection
	var b, l, s int
	err := r.db.QueryRow(`
		SELECT breakfast, lunch, supper, updated_at
		FROM month_meals WHERE email = ? AND date = ?
	`, strings.ToLower(email), date).Scan(&b, &l, &s, &sel.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sel.Breakfast = b != 0
	sel.Lunch = l != 0
	sel.Supper = s != 0
	return &sel, nil
}

// GetMemberSelections returns a member's ledger entries for a month,
// keyed by date
func (r *Repository) GetMemberSelections(email, month string) (map[string]DaySelection, error) {
	rows, err := r.db.Query(`
		SELECT date, breakfast, lunch, supper, updated_at
		FROM month_meals
		WHERE email = ? AND date LIKE ?
	`, strings.ToLower(email), month+"-%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	selections := make(map[string]DaySelection)
	for rows.Next() {
		var date string
		var sel DaySelection
		var b, l, s int
		if err := rows.Scan(&date, &b, &l, &s, &sel.UpdatedAt); err != nil {
			return nil, err
		}
		sel.Breakfast = b != 0
		sel.Lunch = l != 0
		sel.Supper = s != 0
		selections[date] = sel
	}
	return selections, rows.Err()
}

// GetMirrorSelection returns the per-user mirror entry for one date, or
// nil if absent. The mirror's absence default (all-false) intentionally
// differs from the aggregate ledger's (all-true); do not unify them.
func (r *Repository) GetMirrorSelection(email, date string) (*DaySelection, error) {
	var sel DaySelection
	var b, l, s int
	err := r.db.QueryRow(`
		SELECT breakfast, lunch, supper, updated_at
		FROM user_meals WHERE email = ? AND date = ?
	`, strings.ToLower(email), date).Scan(&b, &l, &s, &sel.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sel.Breakfast = b != 0
	sel.Lunch = l != 0
	sel.Supper = s != 0
	return &sel, nil
}

// GetFirstMealDate returns the earliest date a member has ever marked,
// or an empty string if they never have. Used as the fallback anchor in
// range reports.
func (r *Repository) GetFirstMealDate(email string) (string, error) {
	var date sql.NullString
	err := r.db.QueryRow(`
		SELECT MIN(date) FROM user_meals WHERE email = ?
	`, strings.ToLower(email)).Scan(&date)
	if err != nil {
		return "", err
	}
	if !date.Valid {
		return "", nil
	}
	return date.String, nil
}

// Toggle flips one meal boolean for a member and date in a single
// transaction: the aggregate ledger entry (defaulting to all-true when
// absent) has the named meal flipped, and the per-user mirror entry
// (defaulting to all-false when absent) has the named meal set to the
// ledger's new value. Returns the new boolean.
func (r *Repository) Toggle(email, date string, mealType MealType) (bool, error) {
	email = strings.ToLower(email)

	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Ledger entry: default all-true when absent so a never-visited
	// future day bills as full attendance.
	ledger := DaySelection{Breakfast: true, Lunch: true, Supper: true}
	var b, l, s int
	err = tx.QueryRow(`
		SELECT breakfast, lunch, supper FROM month_meals
		WHERE email = ? AND date = ?
	`, email, date).Scan(&b, &l, &s)
	switch {
	case err == sql.ErrNoRows:
		// keep defaults
	case err != nil:
		return false, err
	default:
		ledger.Breakfast = b != 0
		ledger.Lunch = l != 0
		ledger.Supper = s != 0
	}

	var newValue bool
	switch mealType {
	case MealBreakfast:
		ledger.Breakfast = !ledger.Breakfast
		newValue = ledger.Breakfast
	case MealLunch:
		ledger.Lunch = !ledger.Lunch
		newValue = ledger.Lunch
	case MealSupper:
		ledger.Supper = !ledger.Supper
		newValue = ledger.Supper
	default:
		return false, fmt.Errorf("invalid meal type: %s", mealType)
	}

	now := time.Now()
	_, err = tx.Exec(`
		INSERT INTO month_meals (email, date, breakfast, lunch, supper, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email, date) DO UPDATE SET
			breakfast = excluded.breakfast,
			lunch = excluded.lunch,
			supper = excluded.supper,
			updated_at = excluded.updated_at
	`, email, date, ledger.Breakfast, ledger.Lunch, ledger.Supper, now)
	if err != nil {
		return false, err
	}

	// Mirror entry: default all-false when absent; only the named meal
	// takes the ledger's new value, the others stay as they were.
	mirror := DaySelection{}
	err = tx.QueryRow(`
		SELECT breakfast, lunch, supper FROM user_meals
		WHERE email = ? AND date = ?
	`, email, date).Scan(&b, &l, &s)
	switch {
	case err == sql.ErrNoRows:
		// keep defaults
	case err != nil:
		return false, err
	default:
		mirror.Breakfast = b != 0
		mirror.Lunch = l != 0
		mirror.Supper = s != 0
	}

	switch mealType {
	case MealBreakfast:
		mirror.Breakfast = newValue
	case MealLunch:
		mirror.Lunch = newValue
	case MealSupper:
		mirror.Supper = newValue
	}

	_, err = tx.Exec(`
		INSERT INTO user_meals (email, date, breakfast, lunch, supper, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email, date) DO UPDATE SET
			breakfast = excluded.breakfast,
			lunch = excluded.lunch,
			supper = excluded.supper,
			updated_at = excluded.updated_at
	`, email, date, mirror.Breakfast, mirror.Lunch, mirror.Supper, now)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return newValue, nil
}

// --- Monthly Roster Operations ---

// GetRoster returns the member emails for a month, sorted
func (r *Repository) GetRoster(month string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT email FROM monthly_users WHERE month = ? ORDER BY email
	`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// IsRosterMember reports whether an email is on a month's roster.
// Matching is case-insensitive; emails are stored lowercased.
func (r *Repository) IsRosterMember(month, email string) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM monthly_users WHERE month = ? AND email = ?
	`, month, strings.ToLower(email)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddRosterMember adds an email to a month's roster. Adding an existing
// member is a no-op.
func (r *Repository) AddRosterMember(month, email string) error {
	_, err := r.db.Exec(`
		INSERT INTO monthly_users (month, email) VALUES (?, ?)
		ON CONFLICT(month, email) DO NOTHING
	`, month, strings.ToLower(email))
	return err
}

// RemoveRosterMember removes an email from a month's roster
func (r *Repository) RemoveRosterMember(month, email string) error {
	_, err := r.db.Exec(`
		DELETE FROM monthly_users WHERE month = ? AND email = ?
	`, month, strings.ToLower(email))
	return err
}

// --- Exception Window Operations ---

// GetExceptions returns all exception windows for a month
func (r *Repository) GetExceptions(month string) ([]ExceptionWindow, error) {
	rows, err := r.db.Query(`
		SELECT id, month, email, from_date, to_date, created_at
		FROM monthly_exceptions
		WHERE month = ?
		ORDER BY email, from_date
	`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExceptions(rows)
}

// GetMemberExceptions returns one member's exception windows for a month
func (r *Repository) GetMemberExceptions(month, email string) ([]ExceptionWindow, error) {
	rows, err := r.db.Query(`
		SELECT id, month, email, from_date, to_date, created_at
		FROM monthly_exceptions
		WHERE month = ? AND email = ?
		ORDER BY from_date
	`, month, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExceptions(rows)
}

func scanExceptions(rows *sql.Rows) ([]ExceptionWindow, error) {
	var windows []ExceptionWindow
	for rows.Next() {
		var w ExceptionWindow
		if err := rows.Scan(&w.ID, &w.Month, &w.Email, &w.FromDate, &w.ToDate, &w.CreatedAt); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

// ExceptionExists reports whether an identical window already exists
func (r *Repository) ExceptionExists(month, email, from, to string) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM monthly_exceptions
		WHERE month = ? AND email = ? AND from_date = ? AND to_date = ?
	`, month, strings.ToLower(email), from, to).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateException adds an exception window for a member
func (r *Repository) CreateException(month, email, from, to string) (*ExceptionWindow, error) {
	result, err := r.db.Exec(`
		INSERT INTO monthly_exceptions (month, email, from_date, to_date)
		VALUES (?, ?, ?, ?)
	`, month, strings.ToLower(email), from, to)
	if err != nil {
		return nil, err
	}
	id, _ := result.LastInsertId()

	var w ExceptionWindow
	err = r.db.QueryRow(`
		SELECT id, month, email, from_date, to_date, created_at
		FROM monthly_exceptions WHERE id = ?
	`, id).Scan(&w.ID, &w.Month, &w.Email, &w.FromDate, &w.ToDate, &w.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteException removes an exception window by ID
func (r *Repository) DeleteException(id int64) error {
	_, err := r.db.Exec("DELETE FROM monthly_exceptions WHERE id = ?", id)
	return err
}

// --- Point Table Operations ---

// GetPointTable returns the full weekday-partitioned point table
func (r *Repository) GetPointTable() (PointTable, error) {
	rows, err := r.db.Query(`SELECT weekday, rule_key, value FROM point_values`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := make(PointTable)
	for rows.Next() {
		var weekday, key string
		var value float64
		if err := rows.Scan(&weekday, &key, &value); err != nil {
			return nil, err
		}
		if table[weekday] == nil {
			table[weekday] = make(map[string]float64)
		}
		table[weekday][key] = value
	}
	return table, rows.Err()
}

// SetPointValue sets one cell of the point table
func (r *Repository) SetPointValue(weekday, ruleKey string, value float64) error {
	_, err := r.db.Exec(`
		INSERT INTO point_values (weekday, rule_key, value) VALUES (?, ?, ?)
		ON CONFLICT(weekday, rule_key) DO UPDATE SET value = excluded.value
	`, weekday, ruleKey, value)
	return err
}

// --- Fee Operations ---

// GetFee returns one member's fee record for a month, or nil if absent
func (r *Repository) GetFee(email, month string) (*FeeRecord, error) {
	var f FeeRecord
	err := r.db.QueryRow(`
		SELECT email, month, fee, paid FROM fees
		WHERE email = ? AND month = ?
	`, strings.ToLower(email), month).Scan(&f.Email, &f.Month, &f.Fee, &f.Paid)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f.Pending = pending(f.Fee, f.Paid)
	return &f, nil
}

// GetMemberFees returns all of a member's fee records, newest month first
func (r *Repository) GetMemberFees(email string) ([]FeeRecord, error) {
	rows, err := r.db.Query(`
		SELECT email, month, fee, paid FROM fees
		WHERE email = ?
		ORDER BY month DESC
	`, strings.ToLower(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FeeRecord
	for rows.Next() {
		var f FeeRecord
		if err := rows.Scan(&f.Email, &f.Month, &f.Fee, &f.Paid); err != nil {
			return nil, err
		}
		f.Pending = pending(f.Fee, f.Paid)
		records = append(records, f)
	}
	return records, rows.Err()
}

// GetMonthFees returns every member's fee record for one month
func (r *Repository) GetMonthFees(month string) ([]FeeRecord, error) {
	rows, err := r.db.Query(`
		SELECT email, month, fee, paid FROM fees
		WHERE month = ?
		ORDER BY email
	`, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FeeRecord
	for rows.Next() {
		var f FeeRecord
		if err := rows.Scan(&f.Email, &f.Month, &f.Fee, &f.Paid); err != nil {
			return nil, err
		}
		f.Pending = pending(f.Fee, f.Paid)
		records = append(records, f)
	}
	return records, rows.Err()
}

// UpsertFee sets a member's fee and paid amounts for a month
func (r *Repository) UpsertFee(email, month string, fee, paid float64) error {
	_, err := r.db.Exec(`
		INSERT INTO fees (email, month, fee, paid) VALUES (?, ?, ?, ?)
		ON CONFLICT(email, month) DO UPDATE SET
			fee = excluded.fee,
			paid = excluded.paid
	`, strings.ToLower(email), month, fee, paid)
	return err
}

// --- Weekday Menu Operations ---

// GetMenu returns all menu items
func (r *Repository) GetMenu() ([]MenuItem, error) {
	rows, err := r.db.Query(`
		SELECT weekday, meal_type, item FROM weekday_menu
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.Weekday, &m.MealType, &m.Item); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// UpsertMenuItem sets the menu item for one weekday-meal cell
func (r *Repository) UpsertMenuItem(weekday string, mealType MealType, item string) error {
	_, err := r.db.Exec(`
		INSERT INTO weekday_menu (weekday, meal_type, item) VALUES (?, ?, ?)
		ON CONFLICT(weekday, meal_type) DO UPDATE SET item = excluded.item
	`, weekday, mealType, item)
	return err
}

// --- Notification Operations ---

// CreateNotification posts an announcement that expires after a week
func (r *Repository) CreateNotification(title, body string) (*Notification, error) {
	n := Notification{
		ID:        uuid.New().String(),
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(NotificationExpiry),
	}
	_, err := r.db.Exec(`
		INSERT INTO notifications (id, title, body, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
	`, n.ID, n.Title, n.Body, n.CreatedAt, n.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListActiveNotifications returns unexpired announcements, newest first
func (r *Repository) ListActiveNotifications() ([]Notification, error) {
	rows, err := r.db.Query(`
		SELECT id, title, body, created_at, expires_at
		FROM notifications
		WHERE expires_at > ?
		ORDER BY created_at DESC
	`, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt, &n.ExpiresAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// DeleteNotification removes an announcement by ID
func (r *Repository) DeleteNotification(id string) error {
	_, err := r.db.Exec("DELETE FROM notifications WHERE id = ?", id)
	return err
}

// PurgeExpiredNotifications deletes expired announcements and returns
// how many were removed. Called by the background janitor.
func (r *Repository) PurgeExpiredNotifications() (int64, error) {
	result, err := r.db.Exec(`
		DELETE FROM notifications WHERE expires_at <= ?
	`, time.Now())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// --- Suggestion Operations ---

// CreateSuggestion records a student suggestion
func (r *Repository) CreateSuggestion(email, body string) (*Suggestion, error) {
	s := Suggestion{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(email),
		Body:      body,
		CreatedAt: time.Now(),
	}
	_, err := r.db.Exec(`
		INSERT INTO suggestions (id, email, body, read, created_at)
		VALUES (?, ?, ?, 0, ?)
	`, s.ID, s.Email, s.Body, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSuggestions returns all suggestions, newest first
func (r *Repository) ListSuggestions() ([]Suggestion, error) {
	rows, err := r.db.Query(`
		SELECT id, email, body, read, created_at
		FROM suggestions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suggestions []Suggestion
	for rows.Next() {
		var s Suggestion
		var read int
		if err := rows.Scan(&s.ID, &s.Email, &s.Body, &read, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Read = read != 0
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

// MarkSuggestionRead marks a suggestion as read
func (r *Repository) MarkSuggestionRead(id string) error {
	_, err := r.db.Exec("UPDATE suggestions SET read = 1 WHERE id = ?", id)
	return err
}

// DeleteSuggestion removes a suggestion by ID
func (r *Repository) DeleteSuggestion(id string) error {
	_, err := r.db.Exec("DELETE FROM suggestions WHERE id = ?", id)
	return err
}

// --- Mess Bunch Operations ---

// ListBunch returns the mess committee contacts in display order
func (r *Repository) ListBunch() ([]BunchMember, error) {
	rows, err := r.db.Query(`
		SELECT id, name, role, phone, sort_order
		FROM mess_bunch
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []BunchMember
	for rows.Next() {
		var m BunchMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Role, &m.Phone, &m.SortOrder); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CreateBunchMember adds a mess committee contact
func (r *Repository) CreateBunchMember(name, role, phone string, sortOrder int) (*BunchMember, error) {
	result, err := r.db.Exec(`
		INSERT INTO mess_bunch (name, role, phone, sort_order)
		VALUES (?, ?, ?, ?)
	`, name, role, phone, sortOrder)
	if err != nil {
		return nil, err
	}
	id, _ := result.LastInsertId()
	return &BunchMember{ID: id, Name: name, Role: role, Phone: phone, SortOrder: sortOrder}, nil
}

// DeleteBunchMember removes a mess committee contact
func (r *Repository) DeleteBunchMember(id int64) error {
	_, err := r.db.Exec("DELETE FROM mess_bunch WHERE id = ?", id)
	return err
}

func pending(fee, paid float64) float64 {
	p := fee - paid
	if p < 0 {
		return 0
	}
	return p
}

/*
MessAPI is the backend service for the MEA hostel mess PWA: meal marking, monthly rosters, point-based billing and push notifications for resident students.
MessAPI Copyright (C) 2025 MEA Mess Committee
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

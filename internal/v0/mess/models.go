package mess

import (
	"time"
)

// MealType identifies one of the three daily meals
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealSupper    MealType = "supper"
)

// IsValid reports whether the meal type is one of the known three
func (m MealType) IsValid() bool {
	return m == MealBreakfast || m == MealLunch || m == MealSupper
}

// DaySelection holds one member's three meal booleans for one date
type DaySelection struct {
	Breakfast bool      `json:"breakfast"`
	Lunch     bool      `json:"lunch"`
	Supper    bool      `json:"supper"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ForbiddenReason explains why a meal-marking request was refused
type ForbiddenReason string

const (
	ReasonLockedOrPast     ForbiddenReason = "locked_or_past"
	ReasonNotInMonthlyList ForbiddenReason = "not_in_monthly_list"
	ReasonExceptionBlock   ForbiddenReason = "exception_block"
)

// MarkMealRequest is the request body for marking a meal
type MarkMealRequest struct {
	Date     string   `json:"date" binding:"required"`
	MealType MealType `json:"mealType" binding:"required"`
}

// MarkMealResult is the structured outcome of a meal-marking request.
// Refusals are results, not errors, so clients can render the reason.
type MarkMealResult struct {
	Status   string          `json:"status"` // "ok" or "forbidden"
	Reason   ForbiddenReason `json:"reason,omitempty"`
	Today    string          `json:"today,omitempty"`
	Date     string          `json:"date"`
	MealType MealType        `json:"mealType,omitempty"`
	Value    *bool           `json:"value,omitempty"`
}

// ServerNow is the trusted-time response
type ServerNow struct {
	ServerTime    string `json:"serverTime"`
	Timezone      string `json:"timezone"`
	EffectiveDate string `json:"effectiveDate"`
}

// ExceptionWindow is a closed date interval during which a member's
// marking counts; outside all windows the member's days are forced to "0"
type ExceptionWindow struct {
	ID        int64     `json:"id"`
	Month     string    `json:"month"` // YYYY-MM
	Email     string    `json:"email"`
	FromDate  string    `json:"from"` // YYYY-MM-DD
	ToDate    string    `json:"to"`   // YYYY-MM-DD
	CreatedAt time.Time `json:"createdAt"`
}

// Contains reports whether the date falls inside the window (inclusive).
// ISO dates compare correctly as strings.
func (w ExceptionWindow) Contains(date string) bool {
	return w.FromDate <= date && date <= w.ToDate
}

// ExceptionCreateRequest is the request body for adding an exception window
type ExceptionCreateRequest struct {
	Email string `json:"email" binding:"required"`
	From  string `json:"from" binding:"required"`
	To    string `json:"to" binding:"required"`
}

// RosterUpdateRequest is the request body for adding/removing a roster member
type RosterUpdateRequest struct {
	Email string `json:"email" binding:"required"`
}

// PointValue is one cell of the weekday-partitioned point table
type PointValue struct {
	Weekday string  `json:"weekday"` // Mon..Sun
	RuleKey string  `json:"ruleKey"`
	Value   float64 `json:"value"`
}

// PointTable maps weekday name -> rule key -> point value
type PointTable map[string]map[string]float64

// MemberReport is one roster member's row in a range report
type MemberReport struct {
	Email string            `json:"email"`
	Name  string            `json:"name"`
	Keys  map[string]string `json:"keys"`  // date -> rule key
	Total string            `json:"total"` // two decimal places
}

// DayMarking is one member's row in a single-day report
type DayMarking struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Key   string `json:"key"`
}

// FeeRecord holds one member's fee state for one month
type FeeRecord struct {
	Email   string  `json:"email"`
	Month   string  `json:"month"`
	Fee     float64 `json:"fee"`
	Paid    float64 `json:"paid"`
	Pending float64 `json:"pending"`
}

// FeeSummary is the student-facing fee view
type FeeSummary struct {
	Month           string  `json:"month"`
	Fee             float64 `json:"fee"`
	Paid            float64 `json:"paid"`
	Pending         float64 `json:"pending"`
	PendingTotal    float64 `json:"pendingTotal"`
	PreviousPending float64 `json:"previousPending"`
	TotalDue        float64 `json:"totalDue"`
}

// FeeUpdateRequest is the request body for setting a member's monthly fee
type FeeUpdateRequest struct {
	Email string  `json:"email" binding:"required"`
	Month string  `json:"month" binding:"required"`
	Fee   float64 `json:"fee"`
	Paid  float64 `json:"paid"`
}

// MenuItem is one weekday-meal cell of the mess menu
type MenuItem struct {
	Weekday  string   `json:"weekday"`
	MealType MealType `json:"mealType"`
	Item     string   `json:"item"`
}

// Notification is an admin announcement shown to students for a week
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NotificationCreateRequest is the request body for posting a notification
type NotificationCreateRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// Suggestion is a student-submitted suggestion for the mess committee
type Suggestion struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// SuggestionCreateRequest is the request body for submitting a suggestion
type SuggestionCreateRequest struct {
	Body string `json:"body" binding:"required"`
}

// BunchMember is one mess committee contact
type BunchMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	Phone     string `json:"phone"`
	SortOrder int    `json:"sortOrder"`
}

// PushRequest is the request body for broadcasting a push notification
type PushRequest struct {
	Message string `json:"message" binding:"required"`
	Title   string `json:"title"`
}

// PushResult reports per-token delivery counts
type PushResult struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Total   int `json:"total"`
}

// MealCount is one date's attendance tally for the kitchen display
type MealCount struct {
	Date      string `json:"date"`
	Breakfast int    `json:"breakfast"`
	Lunch     int    `json:"lunch"`
	Supper    int    `json:"supper"`
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

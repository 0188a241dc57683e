package mess

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"MessAPI/internal/auth"
	v0common "MessAPI/internal/v0/common"
)

// Handler handles mess HTTP requests
type Handler struct {
	repo   *Repository
	users  *auth.Repository
	clock  *Clock
	gate   *Gate
	engine *Engine
	pusher *Pusher
}

// NewHandler creates a new mess handler
func NewHandler(repo *Repository, users *auth.Repository, clock *Clock, pusher *Pusher) *Handler {
	return &Handler{
		repo:   repo,
		users:  users,
		clock:  clock,
		gate:   NewGate(repo),
		engine: NewEngine(repo),
		pusher: pusher,
	}
}

// resolveEmail returns the acting user's member identifier, failing
// closed when no identity string can be resolved.
func resolveEmail(c *gin.Context) (string, bool) {
	user := auth.GetUserFromContext(c)
	if user == nil || strings.TrimSpace(user.Email) == "" {
		return "", false
	}
	return NormalizeEmailKey(user.Email), true
}

// memberNames builds an email -> display name map for report rows
func (h *Handler) memberNames() (map[string]string, error) {
	users, err := h.users.GetAllUsers()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[NormalizeEmailKey(u.Email)] = u.DisplayName
	}
	return names, nil
}

// GetServerNow returns the trusted server time and effective date.
// GET /api/v0/mess/now, no auth. Clients poll this to detect the
// midnight boundary.
func (h *Handler) GetServerNow(c *gin.Context) {
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(h.clock.ServerNow()))
}

// MarkMeal toggles one meal boolean for a future date.
// POST /api/v0/mess/meals/mark
func (h *Handler) MarkMeal(c *gin.Context) {
	var req MarkMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"date and mealType are required"}))
		return
	}
	if !ValidDate(req.Date) {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"date must be YYYY-MM-DD"}))
		return
	}
	if !req.MealType.IsValid() {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"mealType must be breakfast, lunch or supper"}))
		return
	}

	// The lock on today and past dates depends only on the trusted
	// date, so it is checked before identity resolution.
	today := h.clock.Today()
	if req.Date <= today {
		c.JSON(http.StatusOK, v0common.CreateSuccessResponse(MarkMealResult{
			Status: "forbidden",
			Reason: ReasonLockedOrPast,
			Today:  today,
			Date:   req.Date,
		}))
		return
	}

	email, ok := resolveEmail(c)
	if !ok {
		c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"permission_denied"}))
		return
	}

	reason, err := h.gate.Authorize(email, req.Date, today)
	if err != nil {
		log.Printf("Error authorizing meal mark: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to authorize request"}))
		return
	}
	if reason != "" {
		// Refusals are structured results, not errors, so the client
		// can render the specific reason.
		c.JSON(http.StatusOK, v0common.CreateSuccessResponse(MarkMealResult{
			Status: "forbidden",
			Reason: reason,
			Today:  today,
			Date:   req.Date,
		}))
		return
	}

	value, err := h.repo.Toggle(email, req.Date, req.MealType)
	if err != nil {
		log.Printf("Error toggling meal: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update selection"}))
		return
	}

	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(MarkMealResult{
		Status:   "ok",
		Date:     req.Date,
		MealType: req.MealType,
		Value:    &value,
	}))
}

// GetMyMeals returns the caller's ledger entries for a month.
// GET /api/v0/mess/meals/:month
func (h *Handler) GetMyMeals(c *gin.Context) {
	month := c.Param("month")
	email, ok := resolveEmail(c)
	if !ok {
		c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"permission_denied"}))
		return
	}

	selections, err := h.repo.GetMemberSelections(email, month)
	if err != nil {
		log.Printf("Error fetching selections: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch selections"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(selections))
}

// GetMyRosterStatus reports whether the caller is on a month's roster.
// GET /api/v0/mess/roster/:month/me
func (h *Handler) GetMyRosterStatus(c *gin.Context) {
	month := c.Param("month")
	email, ok := resolveEmail(c)
	if !ok {
		c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"permission_denied"}))
		return
	}

	member, err := h.repo.IsRosterMember(month, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to check roster"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"month": month, "member": member}))
}

// GetMyExceptions returns the caller's exception windows for a month.
// GET /api/v0/mess/exceptions/:month/me
func (h *Handler) GetMyExceptions(c *gin.Context) {
	month := c.Param("month")
	email, ok := resolveEmail(c)
	if !ok {
		c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"permission_denied"}))
		return
	}

	windows, err := h.repo.GetMemberExceptions(month, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch exceptions"}))
		return
	}
	if windows == nil {
		windows = []ExceptionWindow{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(windows))
}

// GetPointTable returns the weekday-partitioned point table.
// GET /api/v0/mess/points
func (h *Handler) GetPointTable(c *gin.Context) {
	table, err := h.repo.GetPointTable()
	if err != nil {
		log.Printf("Error fetching point table: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch point table"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(table))
}

// GetMyFees returns the caller's fee summary for a month.
// GET /api/v0/mess/fees/me?month=YYYY-MM
func (h *Handler) GetMyFees(c *gin.Context) {
	email, ok := resolveEmail(c)
	if !ok {
		c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"permission_denied"}))
		return
	}

	month := c.Query("month")
	if month == "" {
		month = MonthOf(h.clock.Today())
	}

	records, err := h.repo.GetMemberFees(email)
	if err != nil {
		log.Printf("Error fetching fees: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch fees"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(BuildFeeSummary(records, month)))
}

// GetMenu returns the weekday menu.
// GET /api/v0/mess/menu
func (h *Handler) GetMenu(c *gin.Context) {
	items, err := h.repo.GetMenu()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch menu"}))
		return
	}
	if items == nil {
		items = []MenuItem{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(items))
}

// ListNotifications returns the active announcements.
// GET /api/v0/mess/notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	notifications, err := h.repo.ListActiveNotifications()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch notifications"}))
		return
	}
	if notifications == nil {
		notifications = []Notification{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(notifications))
}

// CreateSuggestion records a suggestion from the caller.
// POST /api/v0/mess/suggestions
func (h *Handler) CreateSuggestion(c *gin.Context) {
	email, ok := resolveEmail(c)
	if !ok {
		c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"permission_denied"}))
		return
	}

	var req SuggestionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"body is required"}))
		return
	}

	suggestion, err := h.repo.CreateSuggestion(email, req.Body)
	if err != nil {
		log.Printf("Error creating suggestion: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to create suggestion"}))
		return
	}
	c.JSON(http.StatusCreated, v0common.CreateSuccessResponse(suggestion))
}

// GetBunch returns the mess committee contacts.
// GET /api/v0/mess/bunch
func (h *Handler) GetBunch(c *gin.Context) {
	members, err := h.repo.ListBunch()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch contacts"}))
		return
	}
	if members == nil {
		members = []BunchMember{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(members))
}

// RegisterPushToken stores the caller's FCM registration token.
// POST /api/v0/mess/push/register
func (h *Handler) RegisterPushToken(c *gin.Context) {
	user := auth.GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"authentication required"}))
		return
	}

	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"token is required"}))
		return
	}

	if err := h.users.SetPushToken(user.ID, req.Token); err != nil {
		log.Printf("Error storing push token: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to store push token"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "push token registered"}))
}

// GetMealCounts returns attendance tallies for today and the next week.
// GET /api/v0/mess/display/counts, guarded by a display token.
func (h *Handler) GetMealCounts(c *gin.Context) {
	today := h.clock.Today()
	dates := DatesInRange(today, addDays(today, 7))

	counts, err := h.engine.MealCounts(dates, today)
	if err != nil {
		log.Printf("Error computing meal counts: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to compute meal counts"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(counts))
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

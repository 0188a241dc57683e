package mess

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"MessAPI/internal/auth"
	v0common "MessAPI/internal/v0/common"
)

// --- Roster ---

// GetRoster returns a month's roster.
// GET /api/v0/mess/admin/roster/:month
func (h *Handler) GetRoster(c *gin.Context) {
	month := c.Param("month")
	emails, err := h.repo.GetRoster(month)
	if err != nil {
		log.Printf("Error fetching roster: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch roster"}))
		return
	}
	if emails == nil {
		emails = []string{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"month": month, "members": emails}))
}

// AddRosterMember adds an approved user to a month's roster.
// POST /api/v0/mess/admin/roster/:month
func (h *Handler) AddRosterMember(c *gin.Context) {
	month := c.Param("month")

	var req RosterUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"email is required"}))
		return
	}
	email := NormalizeEmailKey(req.Email)

	user, err := h.users.GetUserByEmail(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch user"}))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, v0common.CreateErrorResponse([]string{"user not found"}))
		return
	}
	// Only approved accounts can be billed for a month.
	if user.Status != auth.StatusApproved {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"user is not approved"}))
		return
	}

	if err := h.repo.AddRosterMember(month, email); err != nil {
		log.Printf("Error adding roster member: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to add roster member"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"month": month, "email": email}))
}

// RemoveRosterMember removes a user from a month's roster.
// DELETE /api/v0/mess/admin/roster/:month?email=...
func (h *Handler) RemoveRosterMember(c *gin.Context) {
	month := c.Param("month")
	email := NormalizeEmailKey(c.Query("email"))
	if email == "" {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"email query parameter is required"}))
		return
	}

	if err := h.repo.RemoveRosterMember(month, email); err != nil {
		log.Printf("Error removing roster member: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to remove roster member"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"month": month, "email": email}))
}

// ExportRosterCSV downloads a month's roster as CSV.
// GET /api/v0/mess/admin/roster/:month/csv
func (h *Handler) ExportRosterCSV(c *gin.Context) {
	month := c.Param("month")
	emails, err := h.repo.GetRoster(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch roster"}))
		return
	}
	names, err := h.memberNames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch members"}))
		return
	}

	data, err := RosterCSV(month, emails, names)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to render CSV"}))
		return
	}
	serveCSV(c, CSVFilename("roster", month), data)
}

// --- Exception Windows ---

// ListExceptions returns all exception windows for a month.
// GET /api/v0/mess/admin/exceptions/:month
func (h *Handler) ListExceptions(c *gin.Context) {
	month := c.Param("month")
	windows, err := h.repo.GetExceptions(month)
	if err != nil {
		log.Printf("Error fetching exceptions: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch exceptions"}))
		return
	}
	if windows == nil {
		windows = []ExceptionWindow{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(windows))
}

// CreateException adds an exception window for a roster member.
// POST /api/v0/mess/admin/exceptions/:month
func (h *Handler) CreateException(c *gin.Context) {
	month := c.Param("month")

	var req ExceptionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"email, from and to are required"}))
		return
	}
	if !ValidDate(req.From) || !ValidDate(req.To) {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"dates must be YYYY-MM-DD"}))
		return
	}
	if req.From > req.To {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"from must not be after to"}))
		return
	}
	email := NormalizeEmailKey(req.Email)

	member, err := h.repo.IsRosterMember(month, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to check roster"}))
		return
	}
	if !member {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"user is not on the roster for this month"}))
		return
	}

	exists, err := h.repo.ExceptionExists(month, email, req.From, req.To)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to check exceptions"}))
		return
	}
	if exists {
		c.JSON(http.StatusConflict, v0common.CreateErrorResponse([]string{"identical exception window already exists"}))
		return
	}

	window, err := h.repo.CreateException(month, email, req.From, req.To)
	if err != nil {
		log.Printf("Error creating exception: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to create exception"}))
		return
	}
	c.JSON(http.StatusCreated, v0common.CreateSuccessResponse(window))
}

// DeleteException removes an exception window.
// DELETE /api/v0/mess/admin/exceptions/:id
func (h *Handler) DeleteException(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid exception ID"}))
		return
	}

	if err := h.repo.DeleteException(id); err != nil {
		log.Printf("Error deleting exception: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to delete exception"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "exception deleted"}))
}

// --- Reports ---

// GetRangeReport computes the points report over a date range.
// GET /api/v0/mess/admin/reports/range?from=...&to=...&format=csv
func (h *Handler) GetRangeReport(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if !ValidDate(from) || !ValidDate(to) {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"from and to must be YYYY-MM-DD"}))
		return
	}
	if MonthOf(from) != MonthOf(to) {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"range must stay within one calendar month"}))
		return
	}
	if from > to {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"from must not be after to"}))
		return
	}

	names, err := h.memberNames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch members"}))
		return
	}

	reports, err := h.engine.RangeReport(from, to, h.clock.Today(), names)
	if err != nil {
		log.Printf("Error computing range report: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to compute report"}))
		return
	}

	if c.Query("format") == "csv" {
		data, err := RangeReportCSV(reports, DatesInRange(from, to))
		if err != nil {
			c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to render CSV"}))
			return
		}
		serveCSV(c, CSVFilename("points", from+"_"+to), data)
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(reports))
}

// GetDayReport computes each roster member's marking for one date.
// GET /api/v0/mess/admin/reports/day/:date?format=csv
func (h *Handler) GetDayReport(c *gin.Context) {
	date := c.Param("date")
	if !ValidDate(date) {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"date must be YYYY-MM-DD"}))
		return
	}

	names, err := h.memberNames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch members"}))
		return
	}

	markings, err := h.engine.DayReport(date, h.clock.Today(), names)
	if err != nil {
		log.Printf("Error computing day report: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to compute report"}))
		return
	}

	if c.Query("format") == "csv" {
		data, err := DayReportCSV(markings)
		if err != nil {
			c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to render CSV"}))
			return
		}
		serveCSV(c, CSVFilename("markings", date), data)
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(markings))
}

// ExportTodayMarkingsCSV downloads today's kitchen sheet built from the
// per-user mirror entries (absent rows mean all-false; exception
// windows are not applied here).
// GET /api/v0/mess/admin/reports/today/csv
func (h *Handler) ExportTodayMarkingsCSV(c *gin.Context) {
	today := h.clock.Today()
	month := MonthOf(today)

	roster, err := h.repo.GetRoster(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch roster"}))
		return
	}
	names, err := h.memberNames()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch members"}))
		return
	}

	rows := make([]TodayMarkingRow, 0, len(roster))
	for _, email := range roster {
		sel, err := h.repo.GetMirrorSelection(email, today)
		if err != nil {
			c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch selections"}))
			return
		}
		row := TodayMarkingRow{Name: names[email], Email: email}
		if sel != nil {
			row.Selection = *sel
		}
		rows = append(rows, row)
	}

	data, err := TodayMarkingsCSV(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to render CSV"}))
		return
	}
	serveCSV(c, CSVFilename("today", today), data)
}

// --- Point Table ---

// UpdatePointValues sets cells of the point table.
// PUT /api/v0/mess/admin/points
func (h *Handler) UpdatePointValues(c *gin.Context) {
	var values []PointValue
	if err := c.ShouldBindJSON(&values); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid request body"}))
		return
	}

	for _, v := range values {
		if !validWeekday(v.Weekday) {
			c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{fmt.Sprintf("invalid weekday: %s", v.Weekday)}))
			return
		}
		if !validRuleKey(v.RuleKey) {
			c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{fmt.Sprintf("invalid rule key: %s", v.RuleKey)}))
			return
		}
	}

	for _, v := range values {
		if err := h.repo.SetPointValue(v.Weekday, v.RuleKey, v.Value); err != nil {
			log.Printf("Error updating point value: %v", err)
			c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update point table"}))
			return
		}
	}

	table, err := h.repo.GetPointTable()
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch point table"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(table))
}

// --- Fees ---

// GetMonthFees returns every member's fee record for a month.
// GET /api/v0/mess/admin/fees/:month
func (h *Handler) GetMonthFees(c *gin.Context) {
	month := c.Param("month")
	records, err := h.repo.GetMonthFees(month)
	if err != nil {
		log.Printf("Error fetching fees: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch fees"}))
		return
	}
	if records == nil {
		records = []FeeRecord{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(records))
}

// UpdateFee sets a member's fee and paid amounts for a month.
// PUT /api/v0/mess/admin/fees
func (h *Handler) UpdateFee(c *gin.Context) {
	var req FeeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"email and month are required"}))
		return
	}
	if req.Fee < 0 || req.Paid < 0 {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"amounts must not be negative"}))
		return
	}

	email := NormalizeEmailKey(req.Email)
	if err := h.repo.UpsertFee(email, req.Month, req.Fee, req.Paid); err != nil {
		log.Printf("Error updating fee: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update fee"}))
		return
	}

	record, err := h.repo.GetFee(email, req.Month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch updated fee"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(record))
}

// --- Menu ---

// UpdateMenuItem sets one weekday-meal cell of the menu.
// PUT /api/v0/mess/admin/menu
func (h *Handler) UpdateMenuItem(c *gin.Context) {
	var req MenuItem
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid request body"}))
		return
	}
	if !validWeekday(req.Weekday) {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid weekday"}))
		return
	}
	if !req.MealType.IsValid() {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid meal type"}))
		return
	}

	if err := h.repo.UpsertMenuItem(req.Weekday, req.MealType, req.Item); err != nil {
		log.Printf("Error updating menu: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update menu"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(req))
}

// --- Notifications ---

// CreateNotification posts an announcement.
// POST /api/v0/mess/admin/notifications
func (h *Handler) CreateNotification(c *gin.Context) {
	var req NotificationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"title and body are required"}))
		return
	}

	notification, err := h.repo.CreateNotification(req.Title, req.Body)
	if err != nil {
		log.Printf("Error creating notification: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to create notification"}))
		return
	}
	c.JSON(http.StatusCreated, v0common.CreateSuccessResponse(notification))
}

// DeleteNotification removes an announcement.
// DELETE /api/v0/mess/admin/notifications/:id
func (h *Handler) DeleteNotification(c *gin.Context) {
	if err := h.repo.DeleteNotification(c.Param("id")); err != nil {
		log.Printf("Error deleting notification: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to delete notification"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "notification deleted"}))
}

// --- Suggestions ---

// ListSuggestions returns all suggestions.
// GET /api/v0/mess/admin/suggestions
func (h *Handler) ListSuggestions(c *gin.Context) {
	suggestions, err := h.repo.ListSuggestions()
	if err != nil {
		log.Printf("Error listing suggestions: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch suggestions"}))
		return
	}
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(suggestions))
}

// MarkSuggestionRead marks a suggestion as read.
// PUT /api/v0/mess/admin/suggestions/:id/read
func (h *Handler) MarkSuggestionRead(c *gin.Context) {
	if err := h.repo.MarkSuggestionRead(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update suggestion"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "suggestion marked read"}))
}

// DeleteSuggestion removes a suggestion.
// DELETE /api/v0/mess/admin/suggestions/:id
func (h *Handler) DeleteSuggestion(c *gin.Context) {
	if err := h.repo.DeleteSuggestion(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to delete suggestion"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "suggestion deleted"}))
}

// --- Mess Bunch ---

// CreateBunchMember adds a committee contact.
// POST /api/v0/mess/admin/bunch
func (h *Handler) CreateBunchMember(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Role      string `json:"role"`
		Phone     string `json:"phone"`
		SortOrder int    `json:"sortOrder"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"name is required"}))
		return
	}

	member, err := h.repo.CreateBunchMember(req.Name, req.Role, req.Phone, req.SortOrder)
	if err != nil {
		log.Printf("Error creating contact: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to create contact"}))
		return
	}
	c.JSON(http.StatusCreated, v0common.CreateSuccessResponse(member))
}

// DeleteBunchMember removes a committee contact.
// DELETE /api/v0/mess/admin/bunch/:id
func (h *Handler) DeleteBunchMember(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid contact ID"}))
		return
	}

	if err := h.repo.DeleteBunchMember(id); err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to delete contact"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "contact deleted"}))
}

// --- Push ---

// SendPushToAll broadcasts a notification to every registered token.
// POST /api/v0/mess/admin/push/all
func (h *Handler) SendPushToAll(c *gin.Context) {
	var req PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"message is required"}))
		return
	}

	tokens, err := h.users.GetAllPushTokens()
	if err != nil {
		log.Printf("Error fetching push tokens: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch push tokens"}))
		return
	}

	result := h.pusher.SendToAll(tokens, req.Title, req.Message)
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(result))
}

func serveCSV(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

func validWeekday(weekday string) bool {
	for _, w := range Weekdays {
		if w == weekday {
			return true
		}
	}
	return false
}

func validRuleKey(key string) bool {
	for _, k := range RuleKeys {
		if k == key {
			return true
		}
	}
	return false
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

package auth

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	v0common "MessAPI/internal/v0/common"
)

// ListUsers returns all users, optionally filtered by status.
// GET /api/admin/users?status=pending
func (h *Handler) ListUsers(c *gin.Context) {
	statusFilter := c.Query("status")

	var users []User
	var err error
	if statusFilter != "" {
		status := Status(statusFilter)
		if status != StatusPending && status != StatusApproved && status != StatusRejected {
			c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid status filter"}))
			return
		}
		users, err = h.repo.GetUsersByStatus(status)
	} else {
		users, err = h.repo.GetAllUsers()
	}
	if err != nil {
		log.Printf("Error listing users: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to list users"}))
		return
	}

	if users == nil {
		users = []User{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(users))
}

// UpdateUserStatus approves or rejects a user account.
// PUT /api/admin/users/:id/status
func (h *Handler) UpdateUserStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid user ID"}))
		return
	}

	var req StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid request body"}))
		return
	}
	if req.Status != StatusPending && req.Status != StatusApproved && req.Status != StatusRejected {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid status value"}))
		return
	}

	user, err := h.repo.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch user"}))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, v0common.CreateErrorResponse([]string{"user not found"}))
		return
	}

	if err := h.repo.UpdateUserStatus(id, req.Status); err != nil {
		log.Printf("Error updating user status: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update status"}))
		return
	}

	updated, err := h.repo.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch updated user"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(updated))
}

// UpdateUserRole changes a user's role.
// PUT /api/admin/users/:id/role
func (h *Handler) UpdateUserRole(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid user ID"}))
		return
	}

	var req RoleUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid request body"}))
		return
	}
	if req.Role != RoleStudent && req.Role != RoleAdmin {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid role value"}))
		return
	}

	// Admins cannot demote themselves; there must always be someone left
	// who can approve accounts.
	current := GetUserFromContext(c)
	if current != nil && current.ID == id && req.Role != RoleAdmin {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"cannot change own role"}))
		return
	}

	user, err := h.repo.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch user"}))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, v0common.CreateErrorResponse([]string{"user not found"}))
		return
	}

	if err := h.repo.UpdateUserRole(id, req.Role); err != nil {
		log.Printf("Error updating user role: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to update role"}))
		return
	}

	updated, err := h.repo.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch updated user"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(updated))
}

// DeleteUser removes a user account.
// DELETE /api/admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid user ID"}))
		return
	}

	current := GetUserFromContext(c)
	if current != nil && current.ID == id {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"cannot delete own account"}))
		return
	}

	user, err := h.repo.GetUserByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch user"}))
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, v0common.CreateErrorResponse([]string{"user not found"}))
		return
	}

	if err := h.repo.DeleteUser(id); err != nil {
		log.Printf("Error deleting user: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to delete user"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "user deleted"}))
}

// CreateToken creates a new display token.
// POST /api/admin/tokens
func (h *Handler) CreateToken(c *gin.Context) {
	var req TokenCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"label is required"}))
		return
	}

	token, err := h.repo.CreateToken(req.Label, req.ExpiresAt)
	if err != nil {
		log.Printf("Error creating token: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to create token"}))
		return
	}
	c.JSON(http.StatusCreated, v0common.CreateSuccessResponse(token))
}

// ListTokens returns all display tokens.
// GET /api/admin/tokens
func (h *Handler) ListTokens(c *gin.Context) {
	tokens, err := h.repo.ListTokens()
	if err != nil {
		log.Printf("Error listing tokens: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to list tokens"}))
		return
	}
	if tokens == nil {
		tokens = []Token{}
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(tokens))
}

// RevokeToken marks a display token as revoked.
// POST /api/admin/tokens/:id/revoke
func (h *Handler) RevokeToken(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid token ID"}))
		return
	}

	token, err := h.repo.GetTokenByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to fetch token"}))
		return
	}
	if token == nil {
		c.JSON(http.StatusNotFound, v0common.CreateErrorResponse([]string{"token not found"}))
		return
	}

	if err := h.repo.RevokeToken(id); err != nil {
		log.Printf("Error revoking token: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to revoke token"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "token revoked"}))
}

// DeleteToken removes a display token.
// DELETE /api/admin/tokens/:id
func (h *Handler) DeleteToken(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, v0common.CreateErrorResponse([]string{"invalid token ID"}))
		return
	}

	if err := h.repo.DeleteToken(id); err != nil {
		log.Printf("Error deleting token: %v", err)
		c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to delete token"}))
		return
	}
	c.JSON(http.StatusOK, v0common.CreateSuccessResponse(gin.H{"message": "token deleted"}))
}

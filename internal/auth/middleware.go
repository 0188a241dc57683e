package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	v0common "MessAPI/internal/v0/common"
)

const (
	// ContextUserKey is the gin context key for the authenticated user
	ContextUserKey = "auth_user"

	// ContextTokenKey is the gin context key for a validated display token
	ContextTokenKey = "auth_display_token"
)

// Middleware bundles the auth dependencies needed by route guards
type Middleware struct {
	repo     *Repository
	sessions *SessionStore
}

// NewMiddleware creates the auth middleware
func NewMiddleware(repo *Repository, sessions *SessionStore) *Middleware {
	return &Middleware{repo: repo, sessions: sessions}
}

// RequireSession requires a valid session cookie. Rejected accounts are
// treated as unauthenticated.
func (m *Middleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := m.sessions.GetSessionFromCookie(c)
		if err != nil || sessionID == "" {
			c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"authentication required"}))
			c.Abort()
			return
		}

		user, err := m.sessions.GetUserFromSession(sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"invalid or expired session"}))
			c.Abort()
			return
		}

		if user.Status == StatusRejected {
			c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"account rejected"}))
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireApproved requires the session user to be an approved member.
// Must run after RequireSession.
func (m *Middleware) RequireApproved() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUserFromContext(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"authentication required"}))
			c.Abort()
			return
		}
		if user.Status != StatusApproved {
			c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"account not approved"}))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole requires the session user to have a specific role.
// Must run after RequireSession.
func (m *Middleware) RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUserFromContext(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"authentication required"}))
			c.Abort()
			return
		}
		if user.Role != role {
			c.JSON(http.StatusForbidden, v0common.CreateErrorResponse([]string{"insufficient permissions"}))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireDisplayToken requires a valid display token in the Authorization
// header. Used by the kitchen counter display endpoints.
func (m *Middleware) RequireDisplayToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"authorization header required"}))
			c.Abort()
			return
		}

		rawToken := strings.TrimPrefix(authHeader, "Bearer ")
		if !strings.HasPrefix(rawToken, TokenPrefix) {
			c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"invalid token format"}))
			c.Abort()
			return
		}

		token, err := m.repo.ValidateToken(rawToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, v0common.CreateErrorResponse([]string{"failed to validate token"}))
			c.Abort()
			return
		}
		if token == nil {
			c.JSON(http.StatusUnauthorized, v0common.CreateErrorResponse([]string{"invalid or revoked token"}))
			c.Abort()
			return
		}

		c.Set(ContextTokenKey, token)
		c.Next()
	}
}

// GetUserFromContext returns the authenticated user from the gin context
func GetUserFromContext(c *gin.Context) *User {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*User)
	if !ok {
		return nil
	}
	return user
}

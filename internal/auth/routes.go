package auth

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers authentication routes
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, mw *Middleware) {
	authGroup := rg.Group("/auth")
	{
		authGroup.GET("/login/:provider", h.Login)
		authGroup.GET("/callback/:provider", h.Callback)
		authGroup.POST("/logout", h.Logout)

		authGroup.GET("/me", mw.RequireSession(), h.Me)
		authGroup.PATCH("/me", mw.RequireSession(), h.UpdateProfile)
	}

	adminGroup := rg.Group("/admin")
	adminGroup.Use(mw.RequireSession(), mw.RequireRole(RoleAdmin))
	{
		adminGroup.GET("/users", h.ListUsers)
		adminGroup.PUT("/users/:id/status", h.UpdateUserStatus)
		adminGroup.PUT("/users/:id/role", h.UpdateUserRole)
		adminGroup.DELETE("/users/:id", h.DeleteUser)

		adminGroup.POST("/tokens", h.CreateToken)
		adminGroup.GET("/tokens", h.ListTokens)
		adminGroup.POST("/tokens/:id/revoke", h.RevokeToken)
		adminGroup.DELETE("/tokens/:id", h.DeleteToken)
	}
}

package mess

import (
	"github.com/gin-gonic/gin"

	"MessAPI/internal/auth"
)

// RegisterRoutes registers mess routes under the given router group
func RegisterRoutes(rg *gin.RouterGroup, h *Handler, mw *auth.Middleware) {
	messGroup := rg.Group("/mess")

	// Trusted time is public; clients poll it to detect the midnight
	// boundary before any authenticated call.
	messGroup.GET("/now", h.GetServerNow)

	// Kitchen counter display reads counts with a bearer token instead
	// of a browser session.
	messGroup.GET("/display/counts", mw.RequireDisplayToken(), h.GetMealCounts)

	member := messGroup.Group("")
	member.Use(mw.RequireSession(), mw.RequireApproved())
	{
		member.POST("/meals/mark", h.MarkMeal)
		member.GET("/meals/:month", h.GetMyMeals)
		member.GET("/roster/:month/me", h.GetMyRosterStatus)
		member.GET("/exceptions/:month/me", h.GetMyExceptions)
		member.GET("/points", h.GetPointTable)
		member.GET("/fees/me", h.GetMyFees)
		member.GET("/menu", h.GetMenu)
		member.GET("/notifications", h.ListNotifications)
		member.POST("/suggestions", h.CreateSuggestion)
		member.GET("/bunch", h.GetBunch)
		member.POST("/push/register", h.RegisterPushToken)
	}

	admin := messGroup.Group("/admin")
	admin.Use(mw.RequireSession(), mw.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/roster/:month", h.GetRoster)
		admin.POST("/roster/:month", h.AddRosterMember)
		admin.DELETE("/roster/:month", h.RemoveRosterMember)
		admin.GET("/roster/:month/csv", h.ExportRosterCSV)

		admin.GET("/exceptions/:month", h.ListExceptions)
		admin.POST("/exceptions/:month", h.CreateException)
		admin.DELETE("/exceptions/:id", h.DeleteException)

		admin.GET("/reports/range", h.GetRangeReport)
		admin.GET("/reports/day/:date", h.GetDayReport)
		admin.GET("/reports/today/csv", h.ExportTodayMarkingsCSV)
		admin.GET("/counts", h.GetMealCounts)

		admin.PUT("/points", h.UpdatePointValues)

		admin.GET("/fees/:month", h.GetMonthFees)
		admin.PUT("/fees", h.UpdateFee)

		admin.PUT("/menu", h.UpdateMenuItem)

		admin.POST("/notifications", h.CreateNotification)
		admin.DELETE("/notifications/:id", h.DeleteNotification)

		admin.GET("/suggestions", h.ListSuggestions)
		admin.PUT("/suggestions/:id/read", h.MarkSuggestionRead)
		admin.DELETE("/suggestions/:id", h.DeleteSuggestion)

		admin.POST("/bunch", h.CreateBunchMember)
		admin.DELETE("/bunch/:id", h.DeleteBunchMember)

		admin.POST("/push/all", h.SendPushToAll)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"fixit-api/controllers"
	middlewares "fixit-api/middleware"
)

func SetupAuthRoutes(r *gin.Engine) {
	// Public auth routes
	r.POST("/register", controllers.Register)
	r.POST("/login", controllers.Login)
	r.POST("/logout", controllers.Logout)
	r.POST("/contact", controllers.CreateMessage)
	r.GET("/geocode/reverse", controllers.ReverseGeocode)
}

func SetupReportRoutes(r *gin.Engine) {
	auth := r.Group("/", middlewares.AuthMiddleware())

	// Citizen routes
	auth.POST("/reports", controllers.CreateReport)
	auth.GET("/reports", controllers.GetMyReports)
	auth.GET("/reports/:id", controllers.GetReportByID)
	auth.DELETE("/reports/:id", controllers.DeleteReport)

	auth.GET("/notifications", controllers.GetMyNotifications)
	auth.PUT("/notifications/:id/read", controllers.MarkNotificationRead)
	auth.POST("/notifications/deliver", controllers.DeliverPendingNotifications)

	auth.GET("/profile", controllers.GetProfile)
	auth.PUT("/profile", controllers.UpdateProfile)
	auth.GET("/profile/stats", controllers.GetProfileStats)
	auth.PUT("/profile/password", controllers.ChangePassword)
	auth.PUT("/profile/notifications", controllers.UpdateNotificationSettings)

	// Admin triage
	admin := auth.Group("/admin", middlewares.RequireAdmin())
	admin.GET("/reports", controllers.GetAllReports)
	admin.GET("/reports/search", controllers.SearchReports)
	admin.GET("/reports/stream", controllers.StreamReports)
	admin.PUT("/reports/:id/status", controllers.UpdateReportStatus)
	admin.PUT("/reports/:id/finished", controllers.ToggleFinished)
	admin.GET("/messages", controllers.GetMessages)
}

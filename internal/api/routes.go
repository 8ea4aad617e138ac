package api

import (
	"net/http"

	"shuttlestats/backend/internal/export"
	"shuttlestats/backend/internal/notify"
	"shuttlestats/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires the full API surface. authService is nil in local
// mode (no account store); register/login then report the mode instead
// of failing obscurely. archive is nil when no bucket is configured.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	demoOwner string,
	authService service.AuthService,
	hub *service.Hub,
	archive *export.Archive,
	msgs *notify.Center,
) {
	trainingHandler := NewTrainingHandler(hub, archive)
	matchHandler := NewMatchHandler(hub, archive)
	scheduleHandler := NewScheduleHandler(hub, archive)
	goalHandler := NewGoalHandler(hub)

	authMiddleware := AuthMiddleware(jwtSecret, demoOwner)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			if authService != nil {
				authHandler := NewAuthHandler(authService)
				authGroup.POST("/register", authHandler.Register)
				authGroup.POST("/login", authHandler.Login)
			} else {
				localOnly := func(c *gin.Context) {
					abortWithError(c, http.StatusServiceUnavailable, "accounts are unavailable in local mode")
				}
				authGroup.POST("/register", localOnly)
				authGroup.POST("/login", localOnly)
			}
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			owner, err := ownerFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to resolve request owner")
				return
			}
			c.JSON(http.StatusOK, gin.H{"owner": owner, "demo": owner == demoOwner})
		})

		// Transient notices produced by the managers (save failures,
		// slow-sync info, goal completions).
		protected.GET("/messages", func(c *gin.Context) {
			c.JSON(http.StatusOK, msgs.Active())
		})

		trainingGroup := protected.Group("/training")
		{
			trainingGroup.GET("", trainingHandler.List)
			trainingGroup.POST("", trainingHandler.Create)
			trainingGroup.PUT("/:id", trainingHandler.Update)
			trainingGroup.DELETE("/:id", trainingHandler.Delete)
			trainingGroup.GET("/stats", trainingHandler.Stats)
			trainingGroup.GET("/export", trainingHandler.Export)
		}

		matchGroup := protected.Group("/matches")
		{
			matchGroup.GET("", matchHandler.List)
			matchGroup.POST("", matchHandler.Create)
			matchGroup.PUT("/:id", matchHandler.Update)
			matchGroup.DELETE("/:id", matchHandler.Delete)
			matchGroup.GET("/stats", matchHandler.Stats)
			matchGroup.GET("/export", matchHandler.Export)
		}

		scheduleGroup := protected.Group("/schedule")
		{
			scheduleGroup.GET("", scheduleHandler.List)
			scheduleGroup.POST("", scheduleHandler.Create)
			scheduleGroup.POST("/recurring", scheduleHandler.CreateRecurring)
			scheduleGroup.PUT("/:id", scheduleHandler.Update)
			scheduleGroup.DELETE("/:id", scheduleHandler.Delete)
			scheduleGroup.GET("/stats", scheduleHandler.Stats)
			scheduleGroup.GET("/export", scheduleHandler.Export)
			scheduleGroup.GET("/reminders", scheduleHandler.ReminderSettings)
			scheduleGroup.PUT("/reminders", scheduleHandler.SaveReminderSettings)
		}

		goalGroup := protected.Group("/goals")
		{
			goalGroup.GET("", goalHandler.List)
			goalGroup.POST("", goalHandler.Create)
			goalGroup.PUT("/:id", goalHandler.Update)
			goalGroup.PATCH("/:id/toggle", goalHandler.ToggleComplete)
			goalGroup.PATCH("/:id/progress", goalHandler.UpdateProgress)
			goalGroup.DELETE("/:id", goalHandler.Delete)
			goalGroup.GET("/stats", goalHandler.Stats)
			goalGroup.POST("/sync", goalHandler.Sync)
		}
	}
}

// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mockdrill/mockdrill-go/internal/application/container"
	"github.com/mockdrill/mockdrill-go/internal/presentation/http/handlers"
	"github.com/mockdrill/mockdrill-go/internal/presentation/http/middleware"
	"github.com/mockdrill/mockdrill-go/pkg/config"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(middleware.FilteredLogger(), gin.Recovery())
	r.Use(middleware.CORSMiddleware(nil))

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger, c.PerfTracker, config.JWTSecret, config.SessionMaxAge)
	settingsHandlers := handlers.NewSettingsHandlers(c.SettingsService, c.Logger, c.PerfTracker)
	drillHandlers := handlers.NewDrillHandlers(c.WizardService, c.Logger, c.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(c.AnalyticsService, c.Broadcaster, c.Logger, c.PerfTracker)
	trackHandlers := handlers.NewTrackHandlers(c.AnalyticsService, c.Logger)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": c.PerfTracker.Uptime().String(),
		})
	})

	// Tracking callbacks are hit by mail clients and target browsers; no auth.
	r.GET("/api/track", trackHandlers.GetTrack)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandlers.PostLogin)
			auth.POST("/signup", authHandlers.PostSignup)
			auth.POST("/reset-password", authHandlers.PostResetPassword)
		auth.POST("/logout", authHandlers.PostLogout)
			auth.GET("/status", authHandlers.GetStatus)
		}

		authed := api.Group("")
		authed.Use(middleware.RequireAuth(config.JWTSecret))
		{
			authed.GET("/settings", settingsHandlers.GetSettings)
			authed.PUT("/settings", settingsHandlers.PutSettings)
			authed.GET("/settings/status", settingsHandlers.GetSettingsStatus)

			drill := authed.Group("/drill")
			{
				drill.GET("/state", drillHandlers.GetState)
				drill.POST("/target", drillHandlers.PostTarget)
				drill.POST("/generate", drillHandlers.PostGenerate)
				drill.POST("/accept", drillHandlers.PostAccept)
				drill.POST("/back", drillHandlers.PostBack)
				drill.POST("/send", drillHandlers.PostSend)
				drill.POST("/schedule", drillHandlers.PostSchedule)
				drill.DELETE("/schedule", drillHandlers.DeleteSchedule)
				drill.POST("/reset", drillHandlers.PostReset)
			}

			analytics := authed.Group("/analytics")
			{
				analytics.GET("/dashboard", analyticsHandlers.GetDashboard)
				analytics.GET("/drills", analyticsHandlers.GetDrills)
				analytics.GET("/drills/:id", analyticsHandlers.GetDrill)
				analytics.GET("/live", analyticsHandlers.GetLiveFeed)
			}
		}
	}

	return r
}

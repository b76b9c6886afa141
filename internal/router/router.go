package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mutabaah/backend/internal/handler"
	"mutabaah/backend/internal/middleware"
	"mutabaah/backend/internal/service"
)

func New(
	authService *service.AuthService,
	authHandler *handler.AuthHandler,
	dayHandler *handler.DayHandler,
	statsHandler *handler.StatsHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	today := api.Group("/today")
	today.Use(middleware.Auth(authService))
	today.POST("", dayHandler.EnsureToday)
	today.GET("", dayHandler.EnsureToday)

	imports := api.Group("/import")
	imports.Use(middleware.Auth(authService))
	imports.POST("", dayHandler.ImportDay)

	days := api.Group("/days")
	days.Use(middleware.Auth(authService))
	days.GET("/:date", dayHandler.GetDay)
	days.PUT("/:date/prayers/:prayer", dayHandler.SetPrayerStatus)
	days.PUT("/:date/zikr", dayHandler.SetZikrCount)
	days.PUT("/:date/quran", dayHandler.SetQuranMinutes)
	days.POST("/:date/tasks/:taskID/toggle", dayHandler.ToggleSpecialTask)

	stats := api.Group("/stats")
	stats.Use(middleware.Auth(authService))
	stats.GET("/streaks", statsHandler.GetStreaks)
	stats.GET("/monthly", statsHandler.GetMonthly)
	stats.GET("/fajr-series", statsHandler.GetFajrSeries)
	stats.GET("/badges", statsHandler.GetBadges)

	return engine
}

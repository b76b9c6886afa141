package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mutabaah/backend/internal/middleware"
	"mutabaah/backend/internal/model"
	"mutabaah/backend/internal/service"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) GetStreaks(c *gin.Context) {
	userID := middleware.UserID(c)

	prayer := c.DefaultQuery("prayer", string(model.PrayerFajr))
	windowDays := 365
	if raw := c.Query("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			windowDays = parsed
		}
	}

	streak, apiErr := h.statsService.Streaks(c.Request.Context(), userID, prayer, windowDays)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

func (h *StatsHandler) GetMonthly(c *gin.Context) {
	userID := middleware.UserID(c)

	year, yearErr := strconv.Atoi(c.Query("year"))
	month, monthErr := strconv.Atoi(c.Query("month"))
	if yearErr != nil || monthErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_month", "message": "year and month query params are required"},
		})
		return
	}

	rollup, apiErr := h.statsService.Monthly(c.Request.Context(), userID, year, month)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"monthly": rollup})
}

func (h *StatsHandler) GetFajrSeries(c *gin.Context) {
	userID := middleware.UserID(c)

	series, apiErr := h.statsService.FajrSeries(c.Request.Context(), userID, c.Query("start"), c.Query("end"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"series": series})
}

func (h *StatsHandler) GetBadges(c *gin.Context) {
	userID := middleware.UserID(c)

	badges, apiErr := h.statsService.Badges(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"badges": badges})
}

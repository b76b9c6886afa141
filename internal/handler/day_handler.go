package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mutabaah/backend/internal/middleware"
	"mutabaah/backend/internal/service"
)

type DayHandler struct {
	dayService *service.DayService
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type setZikrRequest struct {
	Count int `json:"count"`
}

type setQuranRequest struct {
	Minutes int `json:"minutes"`
}

func NewDayHandler(dayService *service.DayService) *DayHandler {
	return &DayHandler{dayService: dayService}
}

// EnsureToday is the lifecycle entrypoint invoked on app foreground and
// before any recent-tasks read. It is idempotent and safe to call often.
func (h *DayHandler) EnsureToday(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "unauthorized", "message": "unauthorized"},
		})
		return
	}

	day, apiErr := h.dayService.EnsureToday(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day})
}

func (h *DayHandler) GetDay(c *gin.Context) {
	userID := middleware.UserID(c)
	day, apiErr := h.dayService.GetDay(c.Request.Context(), userID, c.Param("date"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day})
}

func (h *DayHandler) SetPrayerStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	day, apiErr := h.dayService.SetPrayerStatus(c.Request.Context(), userID, c.Param("date"), c.Param("prayer"), req.Status)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day})
}

func (h *DayHandler) SetZikrCount(c *gin.Context) {
	var req setZikrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	day, apiErr := h.dayService.SetZikrCount(c.Request.Context(), userID, c.Param("date"), req.Count)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day})
}

func (h *DayHandler) SetQuranMinutes(c *gin.Context) {
	var req setQuranRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	day, apiErr := h.dayService.SetQuranMinutes(c.Request.Context(), userID, c.Param("date"), req.Minutes)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day})
}

func (h *DayHandler) ToggleSpecialTask(c *gin.Context) {
	userID := middleware.UserID(c)
	day, apiErr := h.dayService.ToggleSpecialTask(c.Request.Context(), userID, c.Param("date"), c.Param("taskID"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day})
}

func (h *DayHandler) ImportDay(c *gin.Context) {
	var req service.ImportDayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "invalid_json", "message": "invalid request body"},
		})
		return
	}

	userID := middleware.UserID(c)
	day, apiErr := h.dayService.ImportDay(c.Request.Context(), userID, req)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day})
}

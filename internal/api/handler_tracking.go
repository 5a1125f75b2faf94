package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/RoberaET/overtime-clock/internal/tracking"
)

// GetTracking handles GET /api/tracking.
func (h *Handler) GetTracking(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tracking": h.tracker.Totals(tracking.DefaultUser),
		"limits":   h.caps,
	})
}

// GetLimits handles GET /api/limits: the static caps and multiplier table.
func (h *Handler) GetLimits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"limits":      h.caps,
		"multipliers": h.multipliers,
	})
}

// GetHistory handles GET /api/history: archived terminated sessions, newest
// first.
func (h *Handler) GetHistory(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	records, err := h.archive.ListRecords(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": records})
}

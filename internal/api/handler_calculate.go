package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RoberaET/overtime-clock/internal/limits"
	"github.com/RoberaET/overtime-clock/internal/model"
	"github.com/RoberaET/overtime-clock/internal/pay"
	"github.com/RoberaET/overtime-clock/internal/tracking"
)

// calculateRequest is shared by the calculate and start-session endpoints.
// Either hourlyRate or salary+dailyHours must be supplied; hours is optional
// (absent means open-ended / one-hour preview).
type calculateRequest struct {
	HourlyRate   float64  `json:"hourlyRate"`
	Salary       float64  `json:"salary"`
	DailyHours   float64  `json:"dailyHours"`
	OvertimeType string   `json:"overtimeType" binding:"required"`
	Hours        *float64 `json:"hours"`
}

// resolveRequest binds and validates the request, resolving the hourly rate
// and running the limit validator when a duration was given. On failure it
// writes the 400 response and reports ok=false.
func (h *Handler) resolveRequest(c *gin.Context) (req calculateRequest, rate float64, result limits.Result, ok bool) {
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, 0, result, false
	}

	switch {
	case req.HourlyRate != 0:
		if req.HourlyRate < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hourlyRate must be positive"})
			return req, 0, result, false
		}
		rate = req.HourlyRate
	case req.Salary > 0:
		var err error
		rate, err = pay.HourlyRateFromSalary(req.Salary, req.DailyHours)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dailyHours must be positive when converting a salary"})
			return req, 0, result, false
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "hourlyRate or salary is required"})
		return req, 0, result, false
	}

	result = limits.Result{IsValid: true, Errors: []string{}, Warnings: []string{}}
	if req.Hours != nil {
		totals := h.tracker.Totals(tracking.DefaultUser)
		result = limits.Validate(*req.Hours, totals, h.caps)
		if !result.IsValid {
			c.JSON(http.StatusBadRequest, gin.H{"errors": result.Errors})
			return req, 0, result, false
		}
	}
	return req, rate, result, true
}

// Calculate handles POST /api/calculate: a pure pay snapshot, no session
// created. With hours absent it returns a one-hour preview.
func (h *Handler) Calculate(c *gin.Context) {
	req, rate, result, ok := h.resolveRequest(c)
	if !ok {
		return
	}

	hours := 1.0
	if req.Hours != nil {
		hours = *req.Hours
	}
	calc := pay.Compute(rate, model.OvertimeType(req.OvertimeType), hours, h.multipliers)

	c.JSON(http.StatusOK, gin.H{
		"calculation": calc,
		"warnings":    result.Warnings,
		"isPreview":   req.Hours == nil,
	})
}

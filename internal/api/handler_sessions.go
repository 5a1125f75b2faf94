package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/model"
	"github.com/RoberaET/overtime-clock/internal/pay"
	"github.com/RoberaET/overtime-clock/internal/session"
	"github.com/RoberaET/overtime-clock/internal/tracking"
)

// StartSession handles POST /api/sessions. Validation is identical to
// Calculate; a passing request registers an active session with the store.
func (h *Handler) StartSession(c *gin.Context) {
	req, rate, result, ok := h.resolveRequest(c)
	if !ok {
		return
	}

	hours := 1.0
	if req.Hours != nil {
		hours = *req.Hours
	}
	calc := pay.Compute(rate, model.OvertimeType(req.OvertimeType), hours, h.multipliers)

	snap := h.sessions.Start(tracking.DefaultUser, rate, model.OvertimeType(req.OvertimeType), req.Hours, calc)
	h.logger.Info("session started",
		zap.String("session", snap.ID),
		zap.String("type", req.OvertimeType),
		zap.Bool("openEnded", snap.IsOpenEnded))

	c.JSON(http.StatusCreated, gin.H{
		"sessionId":   snap.ID,
		"calculation": snap.Calculation,
		"warnings":    result.Warnings,
		"isOpenEnded": snap.IsOpenEnded,
	})
}

// StopSession handles POST /api/sessions/:id/stop.
func (h *Handler) StopSession(c *gin.Context) {
	id := c.Param("id")

	snap, err := h.sessions.Stop(id)
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	case errors.Is(err, session.ErrNotActive):
		c.JSON(http.StatusConflict, gin.H{"error": "session is already stopped"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// History is best-effort; the in-memory state is authoritative.
	if err := h.archive.SaveRecord(c.Request.Context(), model.StoppedRecord(snap)); err != nil {
		h.logger.Error("archive stopped session", zap.String("session", id), zap.Error(err))
	}

	h.logger.Info("session stopped",
		zap.String("session", id),
		zap.Float64("earnings", snap.CurrentEarnings))
	c.JSON(http.StatusOK, gin.H{"session": snap})
}

// ListSessions handles GET /api/sessions. Snapshots are unordered; clients
// sort for display.
func (h *Handler) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.List()})
}

// SessionStatus handles GET /api/sessions/:id/status, the polling fallback.
// It applies the same tick transition as the scheduler but never emits push
// events.
func (h *Handler) SessionStatus(c *gin.Context) {
	snap, err := h.sessions.Status(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentEarnings": snap.CurrentEarnings,
		"elapsedTime":     snap.ElapsedSeconds,
		"remainingTime":   snap.RemainingSeconds,
		"isOpenEnded":     snap.IsOpenEnded,
		"isActive":        snap.IsActive,
	})
}

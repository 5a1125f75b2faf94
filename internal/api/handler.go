package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/RoberaET/overtime-clock/internal/archive"
	"github.com/RoberaET/overtime-clock/internal/limits"
	"github.com/RoberaET/overtime-clock/internal/pay"
	"github.com/RoberaET/overtime-clock/internal/session"
	"github.com/RoberaET/overtime-clock/internal/tracking"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	sessions    *session.Store
	tracker     *tracking.Tracker
	archive     archive.Store
	caps        limits.Caps
	multipliers pay.Multipliers
	webpush     *webpush.Options
	logger      *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(
	sessions *session.Store,
	tracker *tracking.Tracker,
	archiveStore archive.Store,
	caps limits.Caps,
	multipliers pay.Multipliers,
	webpushOptions *webpush.Options,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		sessions:    sessions,
		tracker:     tracker,
		archive:     archiveStore,
		caps:        caps,
		multipliers: multipliers,
		webpush:     webpushOptions,
		logger:      logger,
	}
}

package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/RoberaET/overtime-clock/config"
	"github.com/RoberaET/overtime-clock/internal/mw"
	"github.com/RoberaET/overtime-clock/internal/notify"
)

// NewRouter creates and configures the Gin router.
func NewRouter(h *Handler, hub *notify.Hub, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/calculate", h.Calculate)

		api.POST("/sessions", h.StartSession)
		api.GET("/sessions", h.ListSessions)
		api.POST("/sessions/:id/stop", h.StopSession)
		api.GET("/sessions/:id/status", h.SessionStatus)

		api.GET("/tracking", h.GetTracking)
		api.GET("/limits", caching, h.GetLimits)
		api.GET("/history", h.GetHistory)

		// Live earnings stream; 1Hz cadence driven by the scheduler.
		api.GET("/ws/sessions/:id", notify.StreamHandler(hub, h.sessions.Status, h.logger))

		api.PUT("/push/subscriptions", h.PutSubscription)
		api.GET("/push/subscriptions", h.GetSubscription)
		api.DELETE("/push/subscriptions", h.DeleteSubscription)
		api.GET("/push/vapid_public_key", caching, h.GetVAPIDPublicKey)
	}

	return r
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"workforce-engine/config"
	"workforce-engine/metrics"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Instrument(), RequestLog(h.logger, "/metrics", "/healthz"))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	rateLimiter := RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	caching := Cache(h.responses, h.cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/forecasts", h.PostForecast)
		api.GET("/forecasts", caching, h.GetForecasts)
		api.POST("/interactions", h.PostInteractions)
		api.POST("/schedules/validate", h.PostValidateSchedule)
	}

	return r
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"go.uber.org/zap"

	"lostfound-desk/config"
	"lostfound-desk/internal/mw"
	"lostfound-desk/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, mailer Notifier, cfg config.ServerConfig, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), mw.RequestID())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORSOrigins,
			AllowHeaders:  []string{"Origin", "Content-Type", mw.RequestIDHeader},
			ExposeHeaders: []string{"Content-Length", mw.RequestIDHeader},
			AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		}))
	}

	handler := NewHandler(s, mailer, logger)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Searches are cached; any successful write flushes the cache.
	responses := mw.NewResponseCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	r.POST("/prendas", rateLimiter, responses.Invalidate(), handler.CreateGarment)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/buscar", responses.Read(), handler.SearchGarments)
		api.PATCH("/prendas/:id/estado", responses.Invalidate(), handler.UpdateReturnStatus)
		api.PUT("/prendas/:id/estado", responses.Invalidate(), handler.UpdateReturnStatus)
	}

	return r
}

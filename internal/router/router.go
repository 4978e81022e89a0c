package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/geonotify/internal/middleware"
	"github.com/jwalitptl/geonotify/pkg/logger"
)

// Handler registers routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout middleware.TimeoutConfig
}

type Router struct {
	engine *gin.Engine
}

func NewRouter(cfg Config, log *logger.Logger, healthH Handler, apiHandlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(log))
	engine.Use(middleware.Recovery())

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	healthH.RegisterRoutes(engine.Group(""))

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  cfg.RateLimit,
		Burst: cfg.RateBurst,
	})

	api := engine.Group("/api/v1")
	api.Use(limiter.RateLimit())
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	for _, h := range apiHandlers {
		h.RegisterRoutes(api)
	}

	return &Router{engine: engine}
}

// Engine exposes the underlying gin engine for the HTTP server.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

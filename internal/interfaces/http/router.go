// Package http assembles the gin router and HTTP server of the market API.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rentscope/geointel/internal/application/market"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/prometheus"
	"github.com/rentscope/geointel/internal/interfaces/http/handlers"
	"github.com/rentscope/geointel/internal/interfaces/http/middleware"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Service *market.Service
	Metrics *prometheus.Metrics
	Logger  logging.Logger
	Version string

	// ReadinessProbes maps dependency names to their health checks.
	ReadinessProbes map[string]handlers.Pinger

	// Mode is the gin mode: "debug", "release", or "test".
	Mode string
}

// NewRouter builds the full route table with the standard middleware chain.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS())
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	handlers.NewHealthHandler(deps.Version, deps.ReadinessProbes).Register(r)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			deps.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	handlers.NewMarketHandler(deps.Service).Register(api)
	handlers.NewCacheHandler(deps.Service).Register(api)

	return r
}

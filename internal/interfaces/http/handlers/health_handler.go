package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	version string
	deps    map[string]Pinger
}

// NewHealthHandler constructs the handler.  deps maps a dependency name to
// its probe; a nil map means readiness equals liveness.
func NewHealthHandler(version string, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{version: version, deps: deps}
}

func (h *HealthHandler) Register(r gin.IRoutes) {
	r.GET("/healthz", h.live)
	r.GET("/readyz", h.ready)
}

func (h *HealthHandler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.version})
}

func (h *HealthHandler) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.deps))
	healthy := true
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	c.JSON(status, gin.H{"status": overall, "version": h.version, "checks": checks})
}

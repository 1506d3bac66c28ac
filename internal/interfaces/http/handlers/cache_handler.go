package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rentscope/geointel/internal/application/market"
	"github.com/rentscope/geointel/pkg/errors"
)

// CacheHandler exposes cache administration endpoints.
type CacheHandler struct {
	svc *market.Service
}

func NewCacheHandler(svc *market.Service) *CacheHandler {
	return &CacheHandler{svc: svc}
}

func (h *CacheHandler) Register(api *gin.RouterGroup) {
	api.GET("/cache/stats", h.stats)
	api.POST("/cache/warmup", h.warmup)
	api.DELETE("/cache", h.flush)
	api.DELETE("/cache/districts", h.invalidate)
}

func (h *CacheHandler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CacheStats())
}

func (h *CacheHandler) warmup(c *gin.Context) {
	warmed := h.svc.WarmupHotDistricts(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"warmed": warmed})
}

func (h *CacheHandler) flush(c *gin.Context) {
	h.svc.FlushCache(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *CacheHandler) invalidate(c *gin.Context) {
	city := c.Query("city")
	district := c.Query("district")
	if city == "" && district == "" {
		respondError(c, errors.InvalidParam("city or district is required; use DELETE /cache to flush everything"))
		return
	}
	h.svc.InvalidateDistrict(c.Request.Context(), city, district)
	c.Status(http.StatusNoContent)
}

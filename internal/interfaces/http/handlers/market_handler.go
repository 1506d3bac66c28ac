package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rentscope/geointel/internal/application/market"
	"github.com/rentscope/geointel/pkg/errors"
)

// defaultClusterK applies when the map request does not pass k.
const defaultClusterK = 8

// MarketHandler serves the prediction and map endpoints.
type MarketHandler struct {
	svc *market.Service
}

func NewMarketHandler(svc *market.Service) *MarketHandler {
	return &MarketHandler{svc: svc}
}

// Register attaches the routes to the versioned API group.
func (h *MarketHandler) Register(api *gin.RouterGroup) {
	api.POST("/predictions", h.predict)
	api.POST("/predictions/batch", h.predictBatch)
	api.GET("/map/clusters", h.clusters)
	api.GET("/map/heatmap", h.heatmap)
	api.GET("/districts", h.districts)
}

func (h *MarketHandler) predict(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		respondError(c, errors.InvalidParam("request body must be a JSON listing object").WithCause(err))
		return
	}

	pred, err := h.svc.PredictPrice(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pred)
}

func (h *MarketHandler) predictBatch(c *gin.Context) {
	var body struct {
		Listings []map[string]interface{} `json:"listings"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, errors.InvalidParam("request body must carry a listings array").WithCause(err))
		return
	}
	if len(body.Listings) == 0 {
		respondError(c, errors.InvalidParam("listings must not be empty"))
		return
	}

	batch, err := h.svc.PredictBatch(c.Request.Context(), body.Listings)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *MarketHandler) clusters(c *gin.Context) {
	k := defaultClusterK
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, errors.InvalidParam("k must be an integer").WithDetail("k="+raw))
			return
		}
		k = parsed
	}

	view, err := h.svc.MapClusters(c.Request.Context(), filterFromQuery(c), k)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MarketHandler) heatmap(c *gin.Context) {
	view, err := h.svc.Heatmap(c.Request.Context(), filterFromQuery(c), c.Query("resolution"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *MarketHandler) districts(c *gin.Context) {
	view, err := h.svc.Aggregate(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentscope/geointel/internal/application/market"
	"github.com/rentscope/geointel/internal/domain/aggregation"
	"github.com/rentscope/geointel/internal/domain/geo"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/prometheus"
)

type stubPointStore struct{ points []geo.Point }

func (s *stubPointStore) ListPoints(context.Context, aggregation.Filter) ([]geo.Point, error) {
	return s.points, nil
}

type stubPropertyStore struct{ records []aggregation.PropertyRecord }

func (s *stubPropertyStore) ListProperties(context.Context, aggregation.Filter) ([]aggregation.PropertyRecord, error) {
	return s.records, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	price := 25000.0
	svc := market.NewService(market.Deps{
		Points: &stubPointStore{points: []geo.Point{
			{Lat: 25.03, Lng: 121.56, Price: &price},
			{Lat: 25.05, Lng: 121.58, Price: &price},
		}},
		Aggregator: aggregation.NewAggregator(nil, &stubPropertyStore{records: []aggregation.PropertyRecord{
			{City: "台北市", District: "大安區", RentPerMonth: 40000, AreaPing: 20},
		}}, nil),
	})
	return NewRouter(RouterDeps{
		Service: svc,
		Metrics: prometheus.NewMetrics(),
		Version: "test",
		Mode:    "test",
	})
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPredictEndpoint(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/predictions", map[string]interface{}{
		"rent_per_month": 25000,
		"area_ping":      20.0,
		"district":       "大安區",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Price      float64 `json:"price"`
		Confidence float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Positive(t, resp.Price)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPredictEndpoint_ValidationError(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/predictions", map[string]interface{}{
		"area_ping": 20.0,
		"district":  "大安區",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FEAT_002", resp.Error.Code)
}

func TestClustersEndpoint(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/map/clusters?k=2", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Clusters []json.RawMessage `json:"clusters"`
		Info     struct {
			Algorithm string `json:"algorithm"`
		} `json:"algorithm_info"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Clusters, 2)
	assert.Equal(t, "kmeans", resp.Info.Algorithm)
}

func TestClustersEndpoint_BadK(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/map/clusters?k=many", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHeatmapEndpoint_BadResolution(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/map/heatmap?resolution=ultra", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDistrictsEndpoint(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/districts?city=台北市", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Districts  []json.RawMessage `json:"districts"`
		CityTotals map[string]int    `json:"city_totals"`
		Path       string            `json:"path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Districts, 1)
	assert.Equal(t, 1, resp.CityTotals["台北市"])
	assert.Equal(t, "scan", resp.Path)
}

func TestCacheEndpoints(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/cache", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/cache/districts", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "scope is required")

	w = doJSON(r, http.MethodDelete, "/api/v1/cache/districts?city=台北市&district=大安區", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	r := testRouter(t)

	w := doJSON(r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = doJSON(r, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := testRouter(t)

	// Generate one observed request first.
	doJSON(r, http.MethodGet, "/healthz", nil)

	w := doJSON(r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "geointel_http_requests_total")
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wayfind/internal/clients/google"
	"wayfind/internal/lib/geo"
	"wayfind/internal/services"
)

type fakeBackend struct {
	resolveErr error
	routeErr   error
	encoded    string
	searchErr  error
}

func (f *fakeBackend) Resolve(_ context.Context, text, _, _ string) (geo.Point, error) {
	if f.resolveErr != nil {
		return geo.Point{}, f.resolveErr
	}
	if text == "Vienna" {
		return geo.Point{Latitude: 48.2082, Longitude: 16.3738}, nil
	}
	return geo.Point{Latitude: 47.8095, Longitude: 13.0550}, nil
}

func (f *fakeBackend) ComputeRoute(_ context.Context, _, _ geo.Point, _ google.TravelMode) (string, error) {
	return f.encoded, f.routeErr
}

func (f *fakeBackend) SearchText(_ context.Context, _ google.SearchRequest) (*google.SearchResponse, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &google.SearchResponse{Places: []google.Place{{ID: "p1"}}}, nil
}

func newTestRouter(backend *fakeBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	pipeline := services.NewRouteSearcher(backend, backend, backend, logger)
	h := NewRouteSearchHandler(pipeline, backend, logger)

	router := gin.New()
	h.RegisterRoutes(router)
	return router
}

func testEncodedRoute() string {
	return geo.EncodePolyline([]geo.Point{
		{Latitude: 48.2082, Longitude: 16.3738},
		{Latitude: 48.0000, Longitude: 15.0000},
		{Latitude: 47.8095, Longitude: 13.0550},
	})
}

func TestRouteSearchEndpoint_OK(t *testing.T) {
	router := newTestRouter(&fakeBackend{encoded: testEncodedRoute()})

	body := `{"query":"coffee","from":"Vienna","to":"Salzburg","waypoint_count":3}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/route-search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result services.RouteSearchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "DRIVE", result.TravelMode)
	require.Len(t, result.Waypoints, 3)
	for i, wr := range result.Waypoints {
		assert.Equal(t, i, wr.Waypoint.SequenceIndex)
		assert.False(t, wr.Failed)
	}
}

func TestRouteSearchEndpoint_MissingFields(t *testing.T) {
	router := newTestRouter(&fakeBackend{encoded: testEncodedRoute()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/route-search", strings.NewReader(`{"query":"coffee"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteSearchEndpoint_InvalidMode(t *testing.T) {
	router := newTestRouter(&fakeBackend{encoded: testEncodedRoute()})

	body := `{"query":"coffee","from":"Vienna","to":"Salzburg","mode":"TELEPORT"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/route-search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouteSearchEndpoint_EndpointNotFound(t *testing.T) {
	router := newTestRouter(&fakeBackend{resolveErr: google.ErrNoMatch})

	body := `{"query":"coffee","from":"Atlantis","to":"Salzburg"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/route-search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "origin")
}

func TestRouteSearchEndpoint_NoRoute(t *testing.T) {
	router := newTestRouter(&fakeBackend{routeErr: google.ErrNoRoute})

	body := `{"query":"coffee","from":"Vienna","to":"Salzburg"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/route-search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchEndpoint_OK(t *testing.T) {
	router := newTestRouter(&fakeBackend{})

	body := `{"query":"coffee","lat":48.2,"lng":16.4}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp google.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Places, 1)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&fakeBackend{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

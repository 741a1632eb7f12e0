package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wayfind/internal/clients/google"
	"wayfind/internal/lib/geo"
	"wayfind/internal/services"
)

// RouteSearchHandler exposes the route pipeline and plain text search over
// HTTP in serve mode.
type RouteSearchHandler struct {
	pipeline *services.RouteSearcher
	searcher services.PlaceSearcher
	logger   *zap.Logger
}

// NewRouteSearchHandler creates the handler.
func NewRouteSearchHandler(pipeline *services.RouteSearcher, searcher services.PlaceSearcher, logger *zap.Logger) *RouteSearchHandler {
	return &RouteSearchHandler{pipeline: pipeline, searcher: searcher, logger: logger}
}

// RegisterRoutes registers all endpoints on the given router.
func (h *RouteSearchHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/route-search", h.RouteSearch)
		v1.POST("/search", h.Search)
	}
}

type routeSearchRequest struct {
	Query            string  `json:"query" binding:"required"`
	From             string  `json:"from" binding:"required"`
	To               string  `json:"to" binding:"required"`
	Mode             string  `json:"mode"`
	RadiusMeters     float64 `json:"radius_meters"`
	WaypointCount    int     `json:"waypoint_count"`
	PerWaypointLimit int     `json:"per_waypoint_limit"`
	Language         string  `json:"language"`
	Region           string  `json:"region"`
}

// RouteSearch handles POST /v1/route-search.
func (h *RouteSearchHandler) RouteSearch(c *gin.Context) {
	var req routeSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Mode == "" {
		req.Mode = string(google.TravelModeDrive)
	}
	mode, err := google.ParseTravelMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.RadiusMeters <= 0 {
		req.RadiusMeters = 1000
	}
	if req.WaypointCount <= 0 {
		req.WaypointCount = 5
	}
	if req.PerWaypointLimit <= 0 {
		req.PerWaypointLimit = 5
	}

	result, err := h.pipeline.Run(c.Request.Context(), services.RouteSearchRequest{
		Query:            req.Query,
		From:             req.From,
		To:               req.To,
		Mode:             mode,
		RadiusMeters:     req.RadiusMeters,
		WaypointCount:    req.WaypointCount,
		PerWaypointLimit: req.PerWaypointLimit,
		Language:         req.Language,
		Region:           req.Region,
	})
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

type searchRequest struct {
	Query        string   `json:"query" binding:"required"`
	IncludedType string   `json:"included_type"`
	MinRating    float64  `json:"min_rating"`
	PriceLevels  []string `json:"price_levels"`
	OpenNow      bool     `json:"open_now"`
	Lat          *float64 `json:"lat"`
	Lng          *float64 `json:"lng"`
	RadiusMeters float64  `json:"radius_meters"`
	Limit        int      `json:"limit"`
	Language     string   `json:"language"`
	Region       string   `json:"region"`
}

// Search handles POST /v1/search.
func (h *RouteSearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var center *geo.Point
	if req.Lat != nil && req.Lng != nil {
		center = &geo.Point{Latitude: *req.Lat, Longitude: *req.Lng}
	}
	if req.RadiusMeters <= 0 {
		req.RadiusMeters = 1000
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}

	resp, err := h.searcher.SearchText(c.Request.Context(), google.SearchRequest{
		Query:        req.Query,
		IncludedType: req.IncludedType,
		MinRating:    req.MinRating,
		PriceLevels:  req.PriceLevels,
		OpenNow:      req.OpenNow,
		Center:       center,
		RadiusMeters: req.RadiusMeters,
		Limit:        req.Limit,
		Language:     req.Language,
		Region:       req.Region,
	})
	if err != nil {
		h.respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *RouteSearchHandler) respondPipelineError(c *gin.Context, err error) {
	var validationErr *google.ValidationError
	var endpointErr *services.EndpointResolutionError
	var apiErr *google.APIError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &endpointErr):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "endpoint": endpointErr.Endpoint})
	case errors.Is(err, services.ErrRouteNotFound), errors.Is(err, services.ErrEmptyRoute):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, geo.ErrMalformedPolyline):
		h.logger.Error("routing service returned malformed polyline", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		h.logger.Error("upstream API error", zap.Int("status", apiErr.Status), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.logger.Error("route search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

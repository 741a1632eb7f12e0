package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wayfind/internal/clients/google"
	"wayfind/internal/lib/geo"
)

// ErrRouteNotFound is returned when the routing collaborator has no route
// for the given endpoints and travel mode.
var ErrRouteNotFound = errors.New("no route found for the given endpoints and travel mode")

// ErrEmptyRoute is returned when the route decodes to no path geometry.
var ErrEmptyRoute = errors.New("route contains no path geometry")

// EndpointResolutionError reports which endpoint could not be turned into
// a coordinate.
type EndpointResolutionError struct {
	Endpoint string // "origin" or "destination"
	Err      error
}

func (e *EndpointResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s: %v", e.Endpoint, e.Err)
}

func (e *EndpointResolutionError) Unwrap() error { return e.Err }

// AddressResolver turns free-text into a coordinate.
type AddressResolver interface {
	Resolve(ctx context.Context, text, language, region string) (geo.Point, error)
}

// RouteComputer computes a route and returns its encoded polyline.
type RouteComputer interface {
	ComputeRoute(ctx context.Context, origin, destination geo.Point, mode google.TravelMode) (string, error)
}

// PlaceSearcher performs a location-biased text search.
type PlaceSearcher interface {
	SearchText(ctx context.Context, req google.SearchRequest) (*google.SearchResponse, error)
}

// RouteSearchRequest carries the caller's parameters for one route search.
type RouteSearchRequest struct {
	Query            string
	From             string
	To               string
	Mode             google.TravelMode
	RadiusMeters     float64
	WaypointCount    int
	PerWaypointLimit int
	Language         string
	Region           string
}

// Waypoint is a sampled coordinate along the route. SequenceIndex fixes
// output ordering regardless of fan-out completion order.
type Waypoint struct {
	Point         geo.Point `json:"point"`
	SequenceIndex int       `json:"sequence_index"`
}

// WaypointResult is the outcome of searching near one waypoint: either a
// list of places or a failure marker. A failed search never affects
// sibling waypoints.
type WaypointResult struct {
	Waypoint Waypoint       `json:"waypoint"`
	Places   []google.Place `json:"places,omitempty"`
	Failed   bool           `json:"failed,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// RouteSearchResult is the aggregate outcome, ordered by sequence index.
type RouteSearchResult struct {
	From       string           `json:"from"`
	To         string           `json:"to"`
	TravelMode string           `json:"travel_mode"`
	Waypoints  []WaypointResult `json:"waypoints"`
}

const defaultMaxParallel = 8

// RouteSearcher runs the route sampling and fan-out pipeline against the
// three collaborator capabilities. It holds no per-invocation state, so a
// single instance is safe for concurrent use.
type RouteSearcher struct {
	resolver    AddressResolver
	router      RouteComputer
	searcher    PlaceSearcher
	logger      *zap.Logger
	maxParallel int
}

// NewRouteSearcher creates the pipeline service.
func NewRouteSearcher(resolver AddressResolver, router RouteComputer, searcher PlaceSearcher, logger *zap.Logger) *RouteSearcher {
	return &RouteSearcher{
		resolver:    resolver,
		router:      router,
		searcher:    searcher,
		logger:      logger,
		maxParallel: defaultMaxParallel,
	}
}

// WithMaxParallel bounds the number of concurrent per-waypoint searches.
func (s *RouteSearcher) WithMaxParallel(n int) *RouteSearcher {
	if n > 0 {
		s.maxParallel = n
	}
	return s
}

// Run executes the pipeline: resolve endpoints, fetch the route, decode
// its polyline, sample waypoints, fan out a search per waypoint, and merge
// outcomes in sequence order. Stages before the fan-out are fatal on
// failure; an individual waypoint search failure is recorded in its slot
// and the pipeline still succeeds.
func (s *RouteSearcher) Run(ctx context.Context, req RouteSearchRequest) (*RouteSearchResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	origin, err := s.resolver.Resolve(ctx, req.From, req.Language, req.Region)
	if err != nil {
		return nil, &EndpointResolutionError{Endpoint: "origin", Err: err}
	}
	destination, err := s.resolver.Resolve(ctx, req.To, req.Language, req.Region)
	if err != nil {
		return nil, &EndpointResolutionError{Endpoint: "destination", Err: err}
	}
	s.logger.Debug("endpoints resolved",
		zap.Float64("origin_lat", origin.Latitude),
		zap.Float64("origin_lng", origin.Longitude),
		zap.Float64("dest_lat", destination.Latitude),
		zap.Float64("dest_lng", destination.Longitude))

	encoded, err := s.router.ComputeRoute(ctx, origin, destination, req.Mode)
	if err != nil {
		if errors.Is(err, google.ErrNoRoute) {
			return nil, fmt.Errorf("%w: %v", ErrRouteNotFound, err)
		}
		return nil, fmt.Errorf("route computation failed: %w", err)
	}

	path, err := geo.DecodePolyline(encoded)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, ErrEmptyRoute
	}

	points := geo.SampleWaypoints(path, req.WaypointCount)
	s.logger.Debug("route sampled",
		zap.Int("path_vertices", len(path)),
		zap.Int("waypoints", len(points)))

	waypoints := make([]Waypoint, len(points))
	for i, p := range points {
		waypoints[i] = Waypoint{Point: p, SequenceIndex: i}
	}

	// Scatter-gather with indexed result slots: each search writes only
	// its own slot, so completion order never affects result order.
	results := make([]WaypointResult, len(waypoints))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)

	for _, wp := range waypoints {
		wp := wp
		g.Go(func() error {
			results[wp.SequenceIndex] = s.searchNear(gctx, req, wp)
			return nil
		})
	}
	g.Wait() // workers never return errors; failures live in their slots

	return &RouteSearchResult{
		From:       req.From,
		To:         req.To,
		TravelMode: string(req.Mode),
		Waypoints:  results,
	}, nil
}

func (s *RouteSearcher) searchNear(ctx context.Context, req RouteSearchRequest, wp Waypoint) WaypointResult {
	center := wp.Point
	resp, err := s.searcher.SearchText(ctx, google.SearchRequest{
		Query:        req.Query,
		Center:       &center,
		RadiusMeters: req.RadiusMeters,
		Limit:        req.PerWaypointLimit,
		Language:     req.Language,
		Region:       req.Region,
	})
	if err != nil {
		s.logger.Warn("waypoint search failed",
			zap.Int("sequence_index", wp.SequenceIndex),
			zap.Error(err))
		return WaypointResult{Waypoint: wp, Failed: true, Error: err.Error()}
	}
	return WaypointResult{Waypoint: wp, Places: resp.Places}
}

func validateRequest(req RouteSearchRequest) error {
	switch {
	case req.Query == "":
		return &google.ValidationError{Field: "query", Message: "query is required"}
	case req.From == "":
		return &google.ValidationError{Field: "from", Message: "origin is required"}
	case req.To == "":
		return &google.ValidationError{Field: "to", Message: "destination is required"}
	case req.WaypointCount < 1:
		return &google.ValidationError{Field: "waypoints", Message: "waypoint count must be at least 1"}
	case req.RadiusMeters <= 0:
		return &google.ValidationError{Field: "radius", Message: "radius must be positive"}
	}
	return nil
}

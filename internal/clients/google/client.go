package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wayfind/internal/lib/geo"
)

const (
	defaultPlacesBaseURL = "https://places.googleapis.com/v1"
	defaultRoutesBaseURL = "https://routes.googleapis.com"

	// Responses are capped so a misbehaving endpoint cannot balloon memory.
	maxResponseBytes = 1 << 20

	maxSearchResults = 20
)

// Field masks are mandatory on the Places/Routes APIs; requests without
// one are rejected.
const (
	searchFieldMask = "places.id,places.displayName,places.formattedAddress," +
		"places.shortFormattedAddress,places.types,places.primaryType," +
		"places.primaryTypeDisplayName,places.location,places.rating," +
		"places.userRatingCount,places.priceLevel,places.websiteUri," +
		"places.googleMapsUri,places.businessStatus,places.editorialSummary"

	routeFieldMask = "routes.polyline.encodedPolyline"
)

// HTTPDoer abstracts the HTTP transport for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client provides access to the Google Places API (New) and the Google
// Routes API v2.
type Client struct {
	apiKey        string
	httpClient    HTTPDoer
	placesBaseURL string
	routesBaseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout replaces the default HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient = &http.Client{Timeout: d}
	}
}

// WithHTTPDoer replaces the HTTP transport, for tests.
func WithHTTPDoer(doer HTTPDoer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithPlacesBaseURL overrides the Places API base URL.
func WithPlacesBaseURL(url string) Option {
	return func(c *Client) {
		c.placesBaseURL = url
	}
}

// WithRoutesBaseURL overrides the Routes API base URL.
func WithRoutesBaseURL(url string) Option {
	return func(c *Client) {
		c.routesBaseURL = url
	}
}

// NewClient creates a client for both Google APIs.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		placesBaseURL: defaultPlacesBaseURL,
		routesBaseURL: defaultRoutesBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SearchText performs a Places text search, optionally biased to a circle
// around req.Center.
func (c *Client) SearchText(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, &ValidationError{Field: "query", Message: "query is required"}
	}

	body := map[string]interface{}{
		"textQuery": req.Query,
	}
	if req.IncludedType != "" {
		body["includedType"] = req.IncludedType
	}
	if req.MinRating > 0 {
		body["minRating"] = req.MinRating
	}
	if len(req.PriceLevels) > 0 {
		body["priceLevels"] = req.PriceLevels
	}
	if req.OpenNow {
		body["openNow"] = true
	}
	if req.Center != nil {
		body["locationBias"] = map[string]interface{}{
			"circle": map[string]interface{}{
				"center": map[string]interface{}{
					"latitude":  req.Center.Latitude,
					"longitude": req.Center.Longitude,
				},
				"radius": req.RadiusMeters,
			},
		}
	}
	if req.Limit > 0 {
		limit := req.Limit
		if limit > maxSearchResults {
			limit = maxSearchResults
		}
		body["maxResultCount"] = limit
	}
	if req.Language != "" {
		body["languageCode"] = req.Language
	}
	if req.Region != "" {
		body["regionCode"] = req.Region
	}

	raw, err := c.post(ctx, c.placesBaseURL+"/places:searchText", searchFieldMask, body)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}
	return &resp, nil
}

// Resolve turns free-text (an address or place name) into a coordinate by
// taking the top text-search result.
func (c *Client) Resolve(ctx context.Context, text, language, region string) (geo.Point, error) {
	if text == "" {
		return geo.Point{}, &ValidationError{Field: "location", Message: "location is required"}
	}

	resp, err := c.SearchText(ctx, SearchRequest{
		Query:    text,
		Limit:    1,
		Language: language,
		Region:   region,
	})
	if err != nil {
		return geo.Point{}, err
	}
	for _, p := range resp.Places {
		if p.Location != nil {
			return *p.Location, nil
		}
	}
	return geo.Point{}, ErrNoMatch
}

// ComputeRoute requests a route between two coordinates and returns its
// encoded polyline.
func (c *Client) ComputeRoute(ctx context.Context, origin, destination geo.Point, mode TravelMode) (string, error) {
	body := map[string]interface{}{
		"origin": map[string]interface{}{
			"location": map[string]interface{}{
				"latLng": map[string]interface{}{
					"latitude":  origin.Latitude,
					"longitude": origin.Longitude,
				},
			},
		},
		"destination": map[string]interface{}{
			"location": map[string]interface{}{
				"latLng": map[string]interface{}{
					"latitude":  destination.Latitude,
					"longitude": destination.Longitude,
				},
			},
		},
		"travelMode":       string(mode),
		"polylineEncoding": "ENCODED_POLYLINE",
	}

	raw, err := c.post(ctx, c.routesBaseURL+"/directions/v2:computeRoutes", routeFieldMask, body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Routes []struct {
			Polyline struct {
				EncodedPolyline string `json:"encodedPolyline"`
			} `json:"polyline"`
		} `json:"routes"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("failed to parse route response: %w", err)
	}
	if len(resp.Routes) == 0 || resp.Routes[0].Polyline.EncodedPolyline == "" {
		return "", ErrNoRoute
	}
	return resp.Routes[0].Polyline.EncodedPolyline, nil
}

func (c *Client) post(ctx context.Context, url, fieldMask string, body map[string]interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > maxResponseBytes {
		return nil, &APIError{Status: resp.StatusCode, Message: "response too large"}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &APIError{Status: resp.StatusCode, Message: "rate limit exceeded"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: string(raw)}
	}
	return raw, nil
}

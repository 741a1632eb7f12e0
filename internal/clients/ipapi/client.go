package ipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wayfind/internal/lib/geo"
)

const defaultBaseURL = "http://ip-api.com"

// Location is a coarse IP-derived position with a human description.
type Location struct {
	Point       geo.Point
	Description string
}

// Client geolocates the calling machine via ip-api.com. The service is
// free and keyless, so the client carries no credentials.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates an IP geolocation client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// WithBaseURL overrides the API base URL, for tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Locate resolves the caller's approximate position from its public IP.
func (c *Client) Locate(ctx context.Context) (*Location, error) {
	url := c.baseURL + "/json/?fields=status,lat,lon,city,regionName,country"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("geolocation API error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		Status     string   `json:"status"`
		Lat        *float64 `json:"lat"`
		Lon        *float64 `json:"lon"`
		City       string   `json:"city"`
		RegionName string   `json:"regionName"`
		Country    string   `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("geolocation parse failed: %w", err)
	}

	if parsed.Status != "success" || parsed.Lat == nil || parsed.Lon == nil {
		return nil, fmt.Errorf("IP geolocation failed")
	}

	var parts []string
	for _, s := range []string{parsed.City, parsed.RegionName, parsed.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	description := strings.Join(parts, ", ")
	if description == "" {
		description = fmt.Sprintf("%.4f, %.4f", *parsed.Lat, *parsed.Lon)
	}

	return &Location{
		Point:       geo.Point{Latitude: *parsed.Lat, Longitude: *parsed.Lon},
		Description: description,
	}, nil
}

package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfind/internal/lib/geo"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient("")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSearchText_RequestShape(t *testing.T) {
	var gotPath, gotKey, gotMask string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Goog-Api-Key")
		gotMask = r.Header.Get("X-Goog-FieldMask")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"places":[{"id":"p1","displayName":{"text":"Cafe Central"},"location":{"latitude":48.21,"longitude":16.365},"rating":4.5}]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithPlacesBaseURL(server.URL))
	require.NoError(t, err)

	resp, err := client.SearchText(context.Background(), SearchRequest{
		Query:        "coffee",
		Center:       &geo.Point{Latitude: 48.2082, Longitude: 16.3738},
		RadiusMeters: 500,
		Limit:        30, // above cap, must be clamped to 20
		OpenNow:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, "/places:searchText", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotMask, "places.id")
	assert.Contains(t, gotMask, "places.location")

	assert.Equal(t, "coffee", gotBody["textQuery"])
	assert.Equal(t, true, gotBody["openNow"])
	assert.Equal(t, float64(20), gotBody["maxResultCount"])
	bias := gotBody["locationBias"].(map[string]interface{})["circle"].(map[string]interface{})
	assert.Equal(t, float64(500), bias["radius"])

	require.Len(t, resp.Places, 1)
	assert.Equal(t, "Cafe Central", resp.Places[0].Name())
	require.NotNil(t, resp.Places[0].Rating)
	assert.Equal(t, 4.5, *resp.Places[0].Rating)
}

func TestSearchText_RequiresQuery(t *testing.T) {
	client, err := NewClient("test-key")
	require.NoError(t, err)

	_, err = client.SearchText(context.Background(), SearchRequest{})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "query", validationErr.Field)
}

func TestSearchText_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"permission denied"}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithPlacesBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.SearchText(context.Background(), SearchRequest{Query: "coffee"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Message, "permission denied")
}

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		// Resolution takes the single top result.
		assert.Equal(t, float64(1), body["maxResultCount"])
		w.Write([]byte(`{"places":[{"id":"p1","location":{"latitude":48.2082,"longitude":16.3738}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithPlacesBaseURL(server.URL))
	require.NoError(t, err)

	point, err := client.Resolve(context.Background(), "Vienna", "", "")
	require.NoError(t, err)
	assert.InDelta(t, 48.2082, point.Latitude, 1e-9)
	assert.InDelta(t, 16.3738, point.Longitude, 1e-9)
}

func TestResolve_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithPlacesBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.Resolve(context.Background(), "xyzzy", "", "")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestComputeRoute(t *testing.T) {
	var gotPath, gotMask string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMask = r.Header.Get("X-Goog-FieldMask")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"routes":[{"polyline":{"encodedPolyline":"_p~iF~ps|U_ulLnnqC"}}]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithRoutesBaseURL(server.URL))
	require.NoError(t, err)

	encoded, err := client.ComputeRoute(context.Background(),
		geo.Point{Latitude: 48.2082, Longitude: 16.3738},
		geo.Point{Latitude: 47.8095, Longitude: 13.0550},
		TravelModeDrive)
	require.NoError(t, err)

	assert.Equal(t, "_p~iF~ps|U_ulLnnqC", encoded)
	assert.Equal(t, "/directions/v2:computeRoutes", gotPath)
	assert.Equal(t, "routes.polyline.encodedPolyline", gotMask)
	assert.Equal(t, "DRIVE", gotBody["travelMode"])
	assert.Equal(t, "ENCODED_POLYLINE", gotBody["polylineEncoding"])
}

func TestComputeRoute_NoRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[]}`))
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithRoutesBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.ComputeRoute(context.Background(), geo.Point{}, geo.Point{Latitude: 1}, TravelModeTransit)
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestParseTravelMode(t *testing.T) {
	for _, valid := range []string{"DRIVE", "WALK", "BICYCLE", "TWO_WHEELER", "TRANSIT"} {
		mode, err := ParseTravelMode(valid)
		require.NoError(t, err)
		assert.Equal(t, TravelMode(valid), mode)
	}

	_, err := ParseTravelMode("TELEPORT")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

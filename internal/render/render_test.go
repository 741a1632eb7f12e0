package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfind/internal/clients/google"
	"wayfind/internal/lib/geo"
	"wayfind/internal/services"
)

func TestRouteSearch_MarksFailedWaypoints(t *testing.T) {
	rating := 4.5
	result := &services.RouteSearchResult{
		From:       "Vienna",
		To:         "Salzburg",
		TravelMode: "DRIVE",
		Waypoints: []services.WaypointResult{
			{
				Waypoint: services.Waypoint{Point: geo.Point{Latitude: 48.2, Longitude: 16.3}, SequenceIndex: 0},
				Places: []google.Place{{
					ID:          "p1",
					DisplayName: &google.LocalizedText{Text: "Cafe Central"},
					Rating:      &rating,
				}},
			},
			{
				Waypoint: services.Waypoint{Point: geo.Point{Latitude: 48.0, Longitude: 15.0}, SequenceIndex: 1},
				Failed:   true,
				Error:    "timeout",
			},
		},
	}

	var sb strings.Builder
	RouteSearch(&sb, result)
	out := sb.String()

	assert.Contains(t, out, "Vienna -> Salzburg (DRIVE)")
	assert.Contains(t, out, "Cafe Central")
	assert.Contains(t, out, "search failed: timeout")

	// Waypoints appear in sequence order.
	assert.Less(t, strings.Index(out, "Waypoint 1"), strings.Index(out, "Waypoint 2"))
}

func TestJSON(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, JSON(&sb, map[string]int{"a": 1}))
	assert.Contains(t, sb.String(), `"a": 1`)
}

func TestPlaces_Empty(t *testing.T) {
	var sb strings.Builder
	Places(&sb, nil)
	assert.Contains(t, sb.String(), "No places found")
}

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"wayfind/internal/clients/google"
	"wayfind/internal/services"
)

// JSON writes any value as indented JSON.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Places writes a human-readable place listing.
func Places(w io.Writer, places []google.Place) {
	if len(places) == 0 {
		fmt.Fprintln(w, "No places found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, p := range places {
		fmt.Fprintf(tw, "%d.\t%s\t%s\n", i+1, p.Name(), ratingString(p))
		if addr := address(p); addr != "" {
			fmt.Fprintf(tw, "\t%s\t\n", addr)
		}
		if p.PrimaryType != "" {
			fmt.Fprintf(tw, "\t%s\t\n", p.PrimaryType)
		}
	}
	tw.Flush()
}

// RouteSearch writes the full route search result, one block per waypoint
// in sequence order, with failed waypoints visibly marked.
func RouteSearch(w io.Writer, result *services.RouteSearchResult) {
	fmt.Fprintf(w, "Route: %s -> %s (%s)\n", result.From, result.To, result.TravelMode)

	for _, wr := range result.Waypoints {
		fmt.Fprintf(w, "\nWaypoint %d (%.5f, %.5f)\n",
			wr.Waypoint.SequenceIndex+1,
			wr.Waypoint.Point.Latitude,
			wr.Waypoint.Point.Longitude)

		if wr.Failed {
			fmt.Fprintf(w, "  search failed: %s\n", wr.Error)
			continue
		}
		if len(wr.Places) == 0 {
			fmt.Fprintln(w, "  no results")
			continue
		}
		for _, p := range wr.Places {
			line := "  - " + p.Name()
			if r := ratingString(p); r != "" {
				line += " " + r
			}
			if addr := address(p); addr != "" {
				line += " — " + addr
			}
			fmt.Fprintln(w, line)
		}
	}
}

func ratingString(p google.Place) string {
	if p.Rating == nil {
		return ""
	}
	s := fmt.Sprintf("(%.1f", *p.Rating)
	if p.UserRatingCount != nil {
		s += fmt.Sprintf(", %d ratings", *p.UserRatingCount)
	}
	return s + ")"
}

func address(p google.Place) string {
	if p.ShortFormattedAddress != "" {
		return p.ShortFormattedAddress
	}
	return strings.TrimSpace(p.FormattedAddress)
}

package google

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by NewClient when no key is configured.
var ErrMissingAPIKey = errors.New("missing API key: set GOOGLE_PLACES_API_KEY or use --api-key")

// ErrNoMatch is returned by Resolve when the query matches no place.
var ErrNoMatch = errors.New("no place matched the query")

// ErrNoRoute is returned by ComputeRoute when the Routes API finds no
// route for the given endpoints and travel mode.
var ErrNoRoute = errors.New("no route found between origin and destination")

// ValidationError reports a rejected request field before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %q: %s", e.Field, e.Message)
}

// APIError reports a non-2xx response from a Google API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
}

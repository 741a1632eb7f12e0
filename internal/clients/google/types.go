package google

import "wayfind/internal/lib/geo"

// TravelMode is a Routes API travel mode.
type TravelMode string

const (
	TravelModeDrive      TravelMode = "DRIVE"
	TravelModeWalk       TravelMode = "WALK"
	TravelModeBicycle    TravelMode = "BICYCLE"
	TravelModeTwoWheeler TravelMode = "TWO_WHEELER"
	TravelModeTransit    TravelMode = "TRANSIT"
)

// ParseTravelMode validates a user-supplied travel mode string.
func ParseTravelMode(s string) (TravelMode, error) {
	switch TravelMode(s) {
	case TravelModeDrive, TravelModeWalk, TravelModeBicycle, TravelModeTwoWheeler, TravelModeTransit:
		return TravelMode(s), nil
	}
	return "", &ValidationError{Field: "mode", Message: "must be one of DRIVE, WALK, BICYCLE, TWO_WHEELER, TRANSIT"}
}

// SearchRequest holds the parameters for a Places text search.
type SearchRequest struct {
	Query        string
	IncludedType string
	MinRating    float64
	PriceLevels  []string
	OpenNow      bool
	Center       *geo.Point
	RadiusMeters float64
	Limit        int
	Language     string
	Region       string
}

// SearchResponse is the parsed body of a places:searchText call.
type SearchResponse struct {
	Places []Place `json:"places"`
}

// Place is the unified place record returned by the Places API (New).
// Pointer fields distinguish absent from zero, mirroring the API's sparse
// field-mask responses.
type Place struct {
	ID                     string         `json:"id"`
	DisplayName            *LocalizedText `json:"displayName,omitempty"`
	FormattedAddress       string         `json:"formattedAddress,omitempty"`
	ShortFormattedAddress  string         `json:"shortFormattedAddress,omitempty"`
	Types                  []string       `json:"types,omitempty"`
	PrimaryType            string         `json:"primaryType,omitempty"`
	PrimaryTypeDisplayName *LocalizedText `json:"primaryTypeDisplayName,omitempty"`
	Location               *geo.Point     `json:"location,omitempty"`
	Rating                 *float64       `json:"rating,omitempty"`
	UserRatingCount        *int           `json:"userRatingCount,omitempty"`
	PriceLevel             string         `json:"priceLevel,omitempty"`
	WebsiteURI             string         `json:"websiteUri,omitempty"`
	GoogleMapsURI          string         `json:"googleMapsUri,omitempty"`
	BusinessStatus         string         `json:"businessStatus,omitempty"`
	EditorialSummary       *LocalizedText `json:"editorialSummary,omitempty"`
}

// LocalizedText is the Places API localized string wrapper.
type LocalizedText struct {
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode,omitempty"`
}

// Name returns the display name text, falling back to the place ID.
func (p Place) Name() string {
	if p.DisplayName != nil && p.DisplayName.Text != "" {
		return p.DisplayName.Text
	}
	return p.ID
}

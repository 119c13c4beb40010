package domain

import "fmt"

// SortBy selects the ordering of discovery results.
type SortBy string

const (
	SortByDistance    SortBy = "distance"
	SortByRating      SortBy = "rating"
	SortByPrice       SortBy = "price"
	SortByReviewCount SortBy = "review_count"
)

// ParseSortBy validates a user-supplied sort key. An empty string falls back
// to distance ordering.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "":
		return SortByDistance, nil
	case SortByDistance, SortByRating, SortByPrice, SortByReviewCount:
		return SortBy(s), nil
	default:
		return "", fmt.Errorf("unknown sort key: %q", s)
	}
}

// DiscoveryQuery is one immutable set of search criteria. A fresh value is
// built from UI state on every filter change and passed to the engine for a
// single evaluation pass.
type DiscoveryQuery struct {
	SearchText string  `json:"search_text"`
	CityName   string  `json:"city_name,omitempty"` // "" = no city override
	RadiusKm   float64 `json:"radius_km"`
	MinRating  float64 `json:"min_rating"`
	SortBy     SortBy  `json:"sort_by"`
}

// DefaultRadiusKm is applied when a query does not set its own radius.
const DefaultRadiusKm = 20.0

// NewDiscoveryQuery returns a query with the documented defaults:
// 20 km radius, no minimum rating, distance ordering.
func NewDiscoveryQuery() DiscoveryQuery {
	return DiscoveryQuery{
		RadiusKm: DefaultRadiusKm,
		SortBy:   SortByDistance,
	}
}

// DiscoveryResult is the render-ready outcome of one evaluation pass: the
// ordered listings plus the viewport that frames them. Viewport is nil when
// no result has a resolved zone center.
type DiscoveryResult struct {
	Listings []ScoredListing `json:"listings"`
	Viewport *Viewport       `json:"viewport,omitempty"`
}

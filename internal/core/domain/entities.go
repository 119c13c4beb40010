package domain

import (
	"time"
)

// ServiceZone is a photographer's declared area of operation. A listing may
// carry several zones, one per intervention area. Center is nil when the
// city name has not been geocoded; such a zone still participates in
// city-name search but never in distance computation.
type ServiceZone struct {
	ID       string      `json:"id,omitempty"`
	CityName string      `json:"city_name"`
	RadiusKm float64     `json:"radius_km"`
	Center   *Coordinate `json:"center,omitempty"`
}

// Listing is a photographer's service offer as shown in discovery.
type Listing struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Category    string        `json:"category"`
	Rating      float64       `json:"rating"`
	ReviewCount int           `json:"review_count"`
	PriceAmount float64       `json:"price_amount"`
	PriceUnit   string        `json:"price_unit"`
	Active      bool          `json:"active"`
	Zones       []ServiceZone `json:"zones,omitempty"`
	CreatedAt   time.Time     `json:"created_at,omitempty"`
}

// ScoredListing is a listing annotated for one discovery evaluation.
// DistanceKm is the minimum great-circle distance from the user to any
// resolved zone center, or nil when the user's location is unknown or no
// zone center is resolved. Never persisted.
type ScoredListing struct {
	Listing
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Tier       RankTier `json:"tier"`
}

// RankTier is a presentation hint for map markers. It is derived from the
// rating alone and must not influence filtering or ordering.
type RankTier string

const (
	TierExcellent RankTier = "excellent"
	TierGood      RankTier = "good"
	TierFair      RankTier = "fair"
	TierPoor      RankTier = "poor"
)

// TierFor maps a rating to its marker tier.
func TierFor(rating float64) RankTier {
	switch {
	case rating >= 4.5:
		return TierExcellent
	case rating >= 4.0:
		return TierGood
	case rating >= 3.5:
		return TierFair
	default:
		return TierPoor
	}
}

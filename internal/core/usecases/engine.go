package usecases

import (
	"sort"
	"strings"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/pkg/geospatial"
)

// Engine turns a raw listing set into an ordered, filtered discovery result.
// Evaluate is pure: it never mutates its inputs and is safe to call
// concurrently with other evaluations.
type Engine struct {
	// Viewport fitting knobs. Zero values select the geospatial defaults.
	MarginFactor float64
	MinSpanDeg   float64
}

// Evaluate runs one discovery pass over the given listings.
//
// Pipeline: drop inactive listings, apply the text/city filter, annotate
// each survivor with its minimum distance to the user, apply the radius
// filter (skipped when the location is unknown or a city override is set),
// apply the rating floor, then sort by the requested criterion. Sorting is
// stable so ties keep their insertion order.
func (e Engine) Evaluate(query domain.DiscoveryQuery, listings []domain.Listing, userLocation *domain.Coordinate) []domain.ScoredListing {
	radius := query.RadiusKm
	if radius <= 0 {
		radius = domain.DefaultRadiusKm
	}

	scored := make([]domain.ScoredListing, 0, len(listings))
	for _, l := range listings {
		if !l.Active {
			continue
		}
		if !matchesText(l, query.SearchText) {
			continue
		}
		if query.CityName != "" && !servesCity(l, query.CityName) {
			continue
		}

		dist := minDistanceKm(l, userLocation)

		// A city search is an explicit override: a listing serving the city
		// stays in even when it is far outside the radius.
		if userLocation != nil && query.CityName == "" {
			if dist == nil || *dist > radius {
				continue
			}
		}

		if l.Rating < query.MinRating {
			continue
		}

		scored = append(scored, domain.ScoredListing{
			Listing:    l,
			DistanceKm: dist,
			Tier:       domain.TierFor(l.Rating),
		})
	}

	sortScored(scored, query.SortBy)
	return scored
}

// DeriveViewport frames every resolved zone center among the results.
// Returns nil when no result carries a resolved center; the caller then
// falls back to a default region.
func (e Engine) DeriveViewport(scored []domain.ScoredListing) *domain.Viewport {
	var centers []domain.Coordinate
	for _, s := range scored {
		for _, z := range s.Zones {
			if z.Center != nil {
				centers = append(centers, *z.Center)
			}
		}
	}
	if len(centers) == 0 {
		return nil
	}

	vp, err := geospatial.FitViewport(centers, e.MarginFactor, e.MinSpanDeg)
	if err != nil {
		return nil
	}
	return &vp
}

// matchesText reports whether the listing's title or category contains the
// search text, case-insensitively. An empty search text matches everything.
func matchesText(l domain.Listing, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	return strings.Contains(strings.ToLower(l.Title), needle) ||
		strings.Contains(strings.ToLower(l.Category), needle)
}

// servesCity reports whether any zone's city name equals the given city,
// case-insensitively. Unresolved zones still count here.
func servesCity(l domain.Listing, city string) bool {
	for _, z := range l.Zones {
		if strings.EqualFold(z.CityName, city) {
			return true
		}
	}
	return false
}

// minDistanceKm returns the minimum great-circle distance from the user to
// any resolved zone center, or nil when the user's location is unknown or
// the listing has no resolved center.
func minDistanceKm(l domain.Listing, user *domain.Coordinate) *float64 {
	if user == nil {
		return nil
	}
	var best *float64
	for _, z := range l.Zones {
		if z.Center == nil {
			continue
		}
		d := geospatial.DistanceKm(*user, *z.Center)
		if best == nil || d < *best {
			v := d
			best = &v
		}
	}
	return best
}

func sortScored(scored []domain.ScoredListing, by domain.SortBy) {
	switch by {
	case domain.SortByRating:
		sort.SliceStable(scored, func(i, j int) bool {
			if scored[i].Rating != scored[j].Rating {
				return scored[i].Rating > scored[j].Rating
			}
			return scored[i].ReviewCount > scored[j].ReviewCount
		})
	case domain.SortByPrice:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].PriceAmount < scored[j].PriceAmount
		})
	case domain.SortByReviewCount:
		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].ReviewCount > scored[j].ReviewCount
		})
	default: // distance
		sort.SliceStable(scored, func(i, j int) bool {
			di, dj := scored[i].DistanceKm, scored[j].DistanceKm
			if di == nil {
				return false // unknown distances sort last
			}
			if dj == nil {
				return true
			}
			return *di < *dj
		})
	}
}

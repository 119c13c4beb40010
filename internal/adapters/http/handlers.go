package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/pkg/metrics"
)

// CatalogStats holds row counts for the listing catalog.
type CatalogStats struct {
	Listings     int    `json:"listings"`
	ActiveCount  int    `json:"active_listings"`
	ServiceZones int    `json:"service_zones"`
	Categories   int    `json:"categories"`
	LastIngest   string `json:"last_ingest,omitempty"`
}

// CatalogStatsHandler returns row counts from the catalog tables.
func CatalogStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.DB == nil {
			return errInternal(c, "database not available")
		}

		var stats CatalogStats
		row := deps.DB.Pool.QueryRow(c.Context(), `
			SELECT
				(SELECT count(*) FROM listings),
				(SELECT count(*) FROM listings WHERE active),
				(SELECT count(*) FROM service_zones),
				(SELECT count(DISTINCT category) FROM listings WHERE active),
				COALESCE((SELECT max(created_at)::text FROM listings), '')
		`)
		if err := row.Scan(&stats.Listings, &stats.ActiveCount,
			&stats.ServiceZones, &stats.Categories, &stats.LastIngest); err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(stats)
	}
}

// SearchHandler evaluates a discovery query and returns ranked listings
// with a fitted map viewport.
//
// GET /v1/discovery/search?q=portrait&city=lyon&lat=48.85&lon=2.35&radius_km=20&min_rating=4&sort=distance
//
// When lat/lon are absent, the caller's X-Session-ID header is used to
// resolve a best-effort device position. A query with neither still works
// and simply skips distance ranking.
func SearchHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := deps.newQuery()
		query.SearchText = c.Query("q")
		query.CityName = c.Query("city")
		query.MinRating = c.QueryFloat("min_rating", 0)

		if len(query.SearchText) > 200 {
			return errBadRequest(c, "query too long (max 200 characters)")
		}
		if query.MinRating < 0 || query.MinRating > 5 {
			return errBadRequest(c, "min_rating must be between 0 and 5")
		}

		if radius := c.QueryFloat("radius_km", 0); radius != 0 {
			if radius < 0 || radius > 500 {
				return errBadRequest(c, "radius_km must be between 0 and 500")
			}
			query.RadiusKm = radius
		}

		if raw := c.Query("sort"); raw != "" {
			sortBy, err := domain.ParseSortBy(raw)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			query.SortBy = sortBy
		}

		var userLocation *domain.Coordinate
		switch {
		// Presence, not value: lat=0&lon=0 is a real point in the Gulf
		// of Guinea, not a missing location.
		case c.Query("lat") != "" || c.Query("lon") != "":
			lat := c.QueryFloat("lat", 0)
			lon := c.QueryFloat("lon", 0)
			if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
				return errBadRequest(c, "lat/lon out of range")
			}
			userLocation = &domain.Coordinate{Lat: lat, Lon: lon}
		default:
			// No explicit point: fall back to the session's device fix.
			// Absence degrades the ranking, it never fails the search.
			if sessionID := c.Get("X-Session-ID"); sessionID != "" {
				userLocation = deps.Locations.BestEffort(c.UserContext(), sessionID)
			}
		}

		result, err := deps.Discovery.Search(c.UserContext(), query, userLocation)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("search failed", "error", err)
			return errUnavailable(c, "listing catalog unavailable")
		}

		return c.JSON(fiber.Map{
			"listings": result.Listings,
			"viewport": result.Viewport,
			"count":    len(result.Listings),
		})
	}
}

// SuggestHandler returns search suggestions for a text prefix.
func SuggestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		prefix := c.Query("q")
		if len(prefix) > 100 {
			return errBadRequest(c, "prefix too long (max 100 characters)")
		}
		limit := c.QueryInt("limit", 0)
		if limit < 0 || limit > 20 {
			limit = 0
		}

		metrics.SuggestionLookups.Inc()
		suggestions := deps.Suggestions.Suggest(prefix, limit)

		return c.JSON(fiber.Map{
			"suggestions": suggestions,
			"count":       len(suggestions),
		})
	}
}

// GetListingHandler returns a single listing by ID.
func GetListingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "listing id is required")
		}
		listing, err := deps.Discovery.GetListing(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, domain.ErrListingNotFound) {
				return errNotFound(c, "listing not found")
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(listing)
	}
}

// ListingZonesHandler returns the service zones of a listing.
func ListingZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if id == "" {
			return errBadRequest(c, "listing id is required")
		}

		// 404 when the listing itself is unknown; an empty zone list is valid
		if _, err := deps.Discovery.GetListing(c.UserContext(), id); err != nil {
			if errors.Is(err, domain.ErrListingNotFound) {
				return errNotFound(c, "listing not found")
			}
			return errInternal(c, err.Error())
		}

		zones, err := deps.Discovery.ZonesFor(c.UserContext(), id)
		if err != nil {
			return errInternal(c, err.Error())
		}

		c.Set("Cache-Control", "public, max-age=600")
		return c.JSON(fiber.Map{
			"listing_id": id,
			"zones":      zones,
			"count":      len(zones),
		})
	}
}

// ListCategoriesHandler returns the distinct active categories, paginated.
func ListCategoriesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := deps.Listings.CategoryNames(c.UserContext())
		if err != nil {
			return errInternal(c, err.Error())
		}

		offset := c.QueryInt("offset", 0)
		limit := c.QueryInt("limit", 100)
		if offset < 0 {
			offset = 0
		}
		if limit <= 0 || limit > 200 {
			limit = 100
		}

		total := len(categories)
		if offset >= total {
			categories = nil
		} else {
			end := offset + limit
			if end > total {
				end = total
			}
			categories = categories[offset:end]
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: categories, Pagination: pg})
	}
}

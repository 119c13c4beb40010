package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/ports"
)

// DiscoveryService runs discovery searches against the listing catalog:
// fetch matching listings, attach their zones in one batch, evaluate, and
// frame a viewport. Search results are cached briefly; the catalog changes
// rarely compared to how often the same query is issued.
type DiscoveryService struct {
	listings ports.ListingRepository
	cache    ports.CacheService
	engine   Engine
}

// NewDiscoveryService creates a DiscoveryService. cache may be nil.
func NewDiscoveryService(listings ports.ListingRepository, cache ports.CacheService, engine Engine) *DiscoveryService {
	return &DiscoveryService{listings: listings, cache: cache, engine: engine}
}

// Search evaluates one discovery query. userLocation may be nil; radius
// filtering is then skipped and distances stay unset. A repository failure
// is fatal to the evaluation: no partial result is ever returned.
func (s *DiscoveryService) Search(ctx context.Context, query domain.DiscoveryQuery, userLocation *domain.Coordinate) (*domain.DiscoveryResult, error) {
	cacheKey := searchCacheKey(query, userLocation)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var res domain.DiscoveryResult
			if err := json.Unmarshal(data, &res); err == nil {
				return &res, nil
			}
		}
	}

	listings, err := s.Candidates(ctx, query)
	if err != nil {
		return nil, err
	}

	result := s.Assemble(query, listings, userLocation)

	// Cache for 1 minute; listing events invalidate via TTL rather than
	// per-key deletes since search keys are unenumerable.
	if s.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 60)
		}
	}

	return result, nil
}

// Candidates fetches the listings matching the query's storage-level filter
// and attaches their zones in a single batched round trip. The returned
// listings are raw material for Assemble.
func (s *DiscoveryService) Candidates(ctx context.Context, query domain.DiscoveryQuery) ([]domain.Listing, error) {
	listings, err := s.listings.FetchActiveListings(ctx, ports.ListingFilter{
		SearchText: query.SearchText,
		CityName:   query.CityName,
		MinRating:  query.MinRating,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch listings: %w", err)
	}

	if len(listings) > 0 {
		ids := make([]string, len(listings))
		for i, l := range listings {
			ids[i] = l.ID
		}
		zones, err := s.listings.FetchZonesFor(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("fetch zones: %w", err)
		}
		for i := range listings {
			if zs, ok := zones[listings[i].ID]; ok {
				listings[i].Zones = zs
			}
		}
	}

	return listings, nil
}

// Assemble evaluates candidates against the query and frames the viewport.
// Pure; safe to call with the legs of a concurrent fetch join.
func (s *DiscoveryService) Assemble(query domain.DiscoveryQuery, listings []domain.Listing, userLocation *domain.Coordinate) *domain.DiscoveryResult {
	scored := s.engine.Evaluate(query, listings, userLocation)
	return &domain.DiscoveryResult{
		Listings: scored,
		Viewport: s.engine.DeriveViewport(scored),
	}
}

// GetListing returns a single listing with its zones attached.
func (s *DiscoveryService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	cacheKey := "listing:id:" + id
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var l domain.Listing
			if err := json.Unmarshal(data, &l); err == nil {
				return &l, nil
			}
		}
	}

	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	zones, err := s.listings.FetchZonesFor(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("fetch zones: %w", err)
	}
	listing.Zones = zones[id]

	if s.cache != nil {
		if data, err := json.Marshal(listing); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return listing, nil
}

// ZonesFor returns the service zones of one listing.
func (s *DiscoveryService) ZonesFor(ctx context.Context, listingID string) ([]domain.ServiceZone, error) {
	zones, err := s.listings.FetchZonesFor(ctx, []string{listingID})
	if err != nil {
		return nil, err
	}
	return zones[listingID], nil
}

// InvalidateListing drops the cached copy of one listing. Called when a
// catalog event announces an upsert.
func (s *DiscoveryService) InvalidateListing(ctx context.Context, listingID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "listing:id:"+listingID)
	}
}

func searchCacheKey(q domain.DiscoveryQuery, loc *domain.Coordinate) string {
	locKey := "none"
	if loc != nil {
		// 4 decimals ~ 11 m; close-by users share cache entries.
		locKey = fmt.Sprintf("%.4f:%.4f", loc.Lat, loc.Lon)
	}
	return fmt.Sprintf("discovery:search:%s:%s:%.1f:%.1f:%s:%s",
		q.SearchText, q.CityName, q.RadiusKm, q.MinRating, q.SortBy, locKey)
}

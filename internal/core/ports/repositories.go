package ports

import (
	"context"

	"github.com/clicbook/clicbook/internal/core/domain"
)

// ListingFilter narrows a listing fetch at the storage layer. All fields are
// optional; zero values mean "no constraint".
type ListingFilter struct {
	SearchText string
	CityName   string
	MinRating  float64
}

// ListingRepository persists photographer listings and their service zones.
type ListingRepository interface {
	Upsert(ctx context.Context, listing *domain.Listing) error
	UpsertBatch(ctx context.Context, listings []domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)

	// FetchActiveListings returns active listings matching the filter,
	// without zones attached. Zones are loaded separately in one batch.
	FetchActiveListings(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)

	// FetchZonesFor returns the service zones for many listings in a single
	// round trip, keyed by listing ID.
	FetchZonesFor(ctx context.Context, listingIDs []string) (map[string][]domain.ServiceZone, error)

	ReplaceZones(ctx context.Context, listingID string, zones []domain.ServiceZone) error

	// CategoryNames returns the distinct service-category vocabulary used by
	// the suggestion index, in catalog order.
	CategoryNames(ctx context.Context) ([]string, error)
}

package usecases_test

import (
	"context"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/ports"
)

// --- Mock ListingRepository ---

type mockListingRepo struct {
	fetchActiveFn   func(ctx context.Context, filter ports.ListingFilter) ([]domain.Listing, error)
	fetchZonesFn    func(ctx context.Context, ids []string) (map[string][]domain.ServiceZone, error)
	getByIDFn       func(ctx context.Context, id string) (*domain.Listing, error)
	categoryNamesFn func(ctx context.Context) ([]string, error)
}

func (m *mockListingRepo) Upsert(ctx context.Context, l *domain.Listing) error       { return nil }
func (m *mockListingRepo) UpsertBatch(ctx context.Context, ls []domain.Listing) error { return nil }
func (m *mockListingRepo) ReplaceZones(ctx context.Context, id string, zs []domain.ServiceZone) error {
	return nil
}

func (m *mockListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrListingNotFound
}

func (m *mockListingRepo) FetchActiveListings(ctx context.Context, filter ports.ListingFilter) ([]domain.Listing, error) {
	if m.fetchActiveFn != nil {
		return m.fetchActiveFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockListingRepo) FetchZonesFor(ctx context.Context, ids []string) (map[string][]domain.ServiceZone, error) {
	if m.fetchZonesFn != nil {
		return m.fetchZonesFn(ctx, ids)
	}
	return map[string][]domain.ServiceZone{}, nil
}

func (m *mockListingRepo) CategoryNames(ctx context.Context) ([]string, error) {
	if m.categoryNamesFn != nil {
		return m.categoryNamesFn(ctx)
	}
	return nil, nil
}

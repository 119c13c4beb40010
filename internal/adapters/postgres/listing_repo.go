package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/ports"
)

// ListingRepo implements ports.ListingRepository with pgx.
type ListingRepo struct {
	db *DB
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db}
}

// Upsert inserts or updates a single listing. Zones are managed separately
// via ReplaceZones.
func (r *ListingRepo) Upsert(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO listings (id, title, category, rating, review_count, price_amount, price_unit, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, category = EXCLUDED.category,
		    rating = EXCLUDED.rating, review_count = EXCLUDED.review_count,
		    price_amount = EXCLUDED.price_amount, price_unit = EXCLUDED.price_unit,
		    active = EXCLUDED.active
	`, l.ID, l.Title, l.Category, l.Rating, l.ReviewCount, l.PriceAmount, l.PriceUnit, l.Active)
	return err
}

// UpsertBatch inserts many listings using pgx.Batch.
func (r *ListingRepo) UpsertBatch(ctx context.Context, listings []domain.Listing) error {
	batch := &pgx.Batch{}
	for _, l := range listings {
		batch.Queue(`
			INSERT INTO listings (id, title, category, rating, review_count, price_amount, price_unit, active)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE
			SET title = EXCLUDED.title, category = EXCLUDED.category,
			    rating = EXCLUDED.rating, review_count = EXCLUDED.review_count,
			    price_amount = EXCLUDED.price_amount, price_unit = EXCLUDED.price_unit,
			    active = EXCLUDED.active
		`, l.ID, l.Title, l.Category, l.Rating, l.ReviewCount, l.PriceAmount, l.PriceUnit, l.Active)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range listings {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByID returns a listing without zones.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, title, category, rating, review_count, price_amount, COALESCE(price_unit, ''), active, created_at
		FROM listings WHERE id = $1
	`, id).Scan(
		&l.ID, &l.Title, &l.Category, &l.Rating, &l.ReviewCount,
		&l.PriceAmount, &l.PriceUnit, &l.Active, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FetchActiveListings returns active listings matching the filter, without
// zones. Empty filter fields impose no constraint.
func (r *ListingRepo) FetchActiveListings(ctx context.Context, filter ports.ListingFilter) ([]domain.Listing, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT l.id, l.title, l.category, l.rating, l.review_count,
		       l.price_amount, COALESCE(l.price_unit, ''), l.active, l.created_at
		FROM listings l
		WHERE l.active
		  AND ($1 = '' OR l.title ILIKE '%' || $1 || '%' OR l.category ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR EXISTS (
		        SELECT 1 FROM service_zones z
		        WHERE z.listing_id = l.id AND lower(z.city_name) = lower($2)))
		  AND l.rating >= $3
		ORDER BY l.created_at
	`, filter.SearchText, filter.CityName, filter.MinRating)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID, &l.Title, &l.Category, &l.Rating, &l.ReviewCount,
			&l.PriceAmount, &l.PriceUnit, &l.Active, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// FetchZonesFor returns the zones for many listings in one round trip,
// keyed by listing ID. Zones without a geocoded center come back with a nil
// Center.
func (r *ListingRepo) FetchZonesFor(ctx context.Context, listingIDs []string) (map[string][]domain.ServiceZone, error) {
	out := make(map[string][]domain.ServiceZone, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, listing_id, city_name, radius_km, center_lat, center_lon
		FROM service_zones
		WHERE listing_id = ANY($1)
		ORDER BY listing_id, id
	`, listingIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			z         domain.ServiceZone
			listingID string
			lat, lon  *float64
		)
		if err := rows.Scan(&z.ID, &listingID, &z.CityName, &z.RadiusKm, &lat, &lon); err != nil {
			return nil, err
		}
		if lat != nil && lon != nil {
			z.Center = &domain.Coordinate{Lat: *lat, Lon: *lon}
		}
		out[listingID] = append(out[listingID], z)
	}
	return out, rows.Err()
}

// ReplaceZones swaps a listing's zones atomically.
func (r *ListingRepo) ReplaceZones(ctx context.Context, listingID string, zones []domain.ServiceZone) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM service_zones WHERE listing_id = $1`, listingID); err != nil {
		return err
	}

	for _, z := range zones {
		var lat, lon *float64
		if z.Center != nil {
			lat, lon = &z.Center.Lat, &z.Center.Lon
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_zones (listing_id, city_name, radius_km, center_lat, center_lon)
			VALUES ($1, $2, $3, $4, $5)
		`, listingID, z.CityName, z.RadiusKm, lat, lon); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// CategoryNames returns the distinct active service categories in catalog
// order.
func (r *ListingRepo) CategoryNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT DISTINCT category
		FROM listings
		WHERE active AND category <> ''
		ORDER BY category
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

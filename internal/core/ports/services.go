package ports

import (
	"context"

	"github.com/clicbook/clicbook/internal/core/domain"
)

// LocationSource resolves a fresh device fix for a session. Implementations
// must return domain.ErrPermissionDenied when the user refused the location
// permission, domain.ErrLocationTimeout when the fix did not arrive inside
// the context deadline, and domain.ErrPositionUnavailable for other
// transient failures.
type LocationSource interface {
	FreshFix(ctx context.Context, sessionID string) (domain.Coordinate, error)
}

// EventPublisher publishes catalog events to a message broker.
type EventPublisher interface {
	PublishListingUpserted(ctx context.Context, listing *domain.Listing) error
	PublishZonesChanged(ctx context.Context, listingID string) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to catalog events from a message broker.
type EventSubscriber interface {
	SubscribeListingEvents(ctx context.Context, handler func(ctx context.Context, listingID string) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

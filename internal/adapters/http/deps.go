package http

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/clicbook/clicbook/internal/adapters/postgres"
	"github.com/clicbook/clicbook/internal/adapters/valkey"
	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/core/ports"
	"github.com/clicbook/clicbook/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Discovery   *usecases.DiscoveryService
	Suggestions *usecases.SuggestionService
	Locations   *usecases.LocationService
	Listings    ports.ListingRepository
	NATS        *nats.Conn
	DB          *postgres.DB
	Cache       *valkey.Cache

	// SuggestionDebounce is the quiescence window applied to WebSocket
	// keystrokes before a suggestion lookup fires.
	SuggestionDebounce time.Duration

	// DefaultRadiusKm is the search radius applied when the caller sets
	// none. Zero keeps the built-in default.
	DefaultRadiusKm float64
}

// newQuery starts a discovery query with the deployment's default radius.
func (d *Dependencies) newQuery() domain.DiscoveryQuery {
	q := domain.NewDiscoveryQuery()
	if d.DefaultRadiusKm > 0 {
		q.RadiusKm = d.DefaultRadiusKm
	}
	return q
}

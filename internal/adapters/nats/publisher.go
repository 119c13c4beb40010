package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/clicbook/clicbook/internal/core/domain"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the catalog streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	streams := []nats.StreamConfig{
		{
			Name:      "LISTING_EVENTS",
			Subjects:  []string{"marketplace.listing.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist — try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// listingEvent is the wire shape of a catalog change notification.
type listingEvent struct {
	ListingID string `json:"listing_id"`
	Kind      string `json:"kind"` // "upserted" | "zones_changed"
}

func (p *Publisher) PublishListingUpserted(ctx context.Context, l *domain.Listing) error {
	data, err := json.Marshal(listingEvent{ListingID: l.ID, Kind: "upserted"})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("marketplace.listing."+l.ID, data)
	return err
}

func (p *Publisher) PublishZonesChanged(ctx context.Context, listingID string) error {
	data, err := json.Marshal(listingEvent{ListingID: listingID, Kind: "zones_changed"})
	if err != nil {
		return err
	}
	_, err = p.js.Publish("marketplace.listing."+listingID, data)
	return err
}

// PublishBroadcast fans data out to live discovery clients (WebSocket relay).
func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("marketplace.updates.broadcast", data)
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	natsadapter "github.com/clicbook/clicbook/internal/adapters/nats"
	"github.com/clicbook/clicbook/internal/adapters/postgres"
	"github.com/clicbook/clicbook/internal/core/domain"
	"github.com/clicbook/clicbook/internal/pkg/config"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

// Manifest is a back-office catalog export: photographer listings with
// their declared intervention zones.
type Manifest struct {
	Source   string         `json:"source"`
	Listings []ListingEntry `json:"listings"`
}

type ListingEntry struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Rating      float64     `json:"rating"`
	ReviewCount int         `json:"review_count"`
	PriceAmount float64     `json:"price_amount"`
	PriceUnit   string      `json:"price_unit"`
	Active      bool        `json:"active"`
	Zones       []ZoneEntry `json:"zones"`
}

type ZoneEntry struct {
	CityName string   `json:"city_name"`
	RadiusKm float64  `json:"radius_km"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("clicbook-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	repo := postgres.NewListingRepo(db)

	// Events are best effort; the catalog stays consistent without them,
	// consumers just serve slightly stale caches until TTL expiry.
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Printf("WARN nats unavailable, skipping event publication: %v", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("ClicBook catalog ingestor — %d listings from %s", len(manifest.Listings), manifest.Source)

	// Optional CLI arg: comma-separated listing IDs to restrict the run
	idFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			idFilter[strings.TrimSpace(s)] = true
		}
	}

	start := time.Now()
	var selected []ListingEntry
	for _, entry := range manifest.Listings {
		if len(idFilter) > 0 && !idFilter[entry.ID] {
			continue
		}
		if entry.ID == "" || entry.Title == "" {
			log.Printf("SKIP invalid entry (missing id or title): %+v", entry)
			continue
		}
		selected = append(selected, entry)
	}

	// One batched upsert for the listing rows
	listings := make([]domain.Listing, len(selected))
	for i, entry := range selected {
		listings[i] = toListing(entry)
	}
	if err := repo.UpsertBatch(ctx, listings); err != nil {
		log.Fatalf("upsert listings: %v", err)
	}

	// Zones are swapped per listing, fanned out over a few workers
	var wg sync.WaitGroup
	sem := make(chan struct{}, 4)

	for _, entry := range selected {
		wg.Add(1)
		go func(e ListingEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ingestZones(ctx, repo, publisher, e); err != nil {
				log.Printf("ERROR [%s]: %v", e.ID, err)
			}
		}(entry)
	}

	wg.Wait()
	log.Printf("ingestion complete: %d listings in %s", len(selected), time.Since(start).Round(time.Millisecond))
}

func ingestZones(ctx context.Context, repo *postgres.ListingRepo, publisher *natsadapter.Publisher, entry ListingEntry) error {
	zones := make([]domain.ServiceZone, len(entry.Zones))
	for i, z := range entry.Zones {
		zones[i] = domain.ServiceZone{
			CityName: z.CityName,
			RadiusKm: z.RadiusKm,
		}
		if z.Lat != nil && z.Lon != nil {
			zones[i].Center = &domain.Coordinate{Lat: *z.Lat, Lon: *z.Lon}
		}
	}

	if err := repo.ReplaceZones(ctx, entry.ID, zones); err != nil {
		return err
	}

	if publisher != nil {
		l := toListing(entry)
		if err := publisher.PublishListingUpserted(ctx, &l); err != nil {
			log.Printf("WARN [%s] event publish failed: %v", entry.ID, err)
		}
		if err := publisher.PublishZonesChanged(ctx, entry.ID); err != nil {
			log.Printf("WARN [%s] zones event publish failed: %v", entry.ID, err)
		}
	}

	return nil
}

func toListing(entry ListingEntry) domain.Listing {
	return domain.Listing{
		ID:          entry.ID,
		Title:       entry.Title,
		Category:    entry.Category,
		Rating:      entry.Rating,
		ReviewCount: entry.ReviewCount,
		PriceAmount: entry.PriceAmount,
		PriceUnit:   entry.PriceUnit,
		Active:      entry.Active,
	}
}

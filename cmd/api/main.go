package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/clicbook/clicbook/internal/adapters/http"
	"github.com/clicbook/clicbook/internal/adapters/location"
	natsadapter "github.com/clicbook/clicbook/internal/adapters/nats"
	"github.com/clicbook/clicbook/internal/adapters/postgres"
	"github.com/clicbook/clicbook/internal/adapters/valkey"
	"github.com/clicbook/clicbook/internal/core/ports"
	"github.com/clicbook/clicbook/internal/core/usecases"
	"github.com/clicbook/clicbook/internal/pkg/config"
	"github.com/clicbook/clicbook/internal/pkg/logging"
	"github.com/clicbook/clicbook/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("clicbook-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	db.StartPoolMetrics(ctx, 15*time.Second)

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// Raw NATS connection for WebSocket broadcast relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	}

	// Repos
	listingRepo := postgres.NewListingRepo(db)

	// Location gateway
	locationSource := location.New(cfg.Location.GatewayURL,
		time.Duration(cfg.Location.TimeoutMs)*time.Millisecond)

	// Use cases
	engine := usecases.Engine{
		MarginFactor: cfg.Discovery.ViewportMargin,
		MinSpanDeg:   cfg.Discovery.ViewportMinSpanDeg,
	}
	// A typed nil pointer must not reach the interface slot
	var cachePort ports.CacheService
	if cache != nil {
		cachePort = cache
	}
	discoverySvc := usecases.NewDiscoveryService(listingRepo, cachePort, engine)
	suggestionSvc := usecases.NewSuggestionService(listingRepo)
	suggestionSvc.DefaultLimit = cfg.Discovery.SuggestionLimit
	locationSvc := usecases.NewLocationService(locationSource,
		time.Duration(cfg.Location.WaitBudgetMs)*time.Millisecond)

	// Warm the suggestion vocabulary and keep it fresh
	if err := suggestionSvc.Refresh(ctx); err != nil {
		slog.Warn("suggestion vocabulary warm-up failed", "error", err)
	}
	suggestionSvc.StartRefreshing(ctx, time.Duration(cfg.Discovery.VocabRefreshMin)*time.Minute)

	// Catalog change events invalidate cached listings
	subscriber, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer subscriber.Close()
		err := subscriber.SubscribeListingEvents(ctx, func(ctx context.Context, listingID string) error {
			discoverySvc.InvalidateListing(ctx, listingID)
			return nil
		})
		if err != nil {
			slog.Warn("listing event subscription failed", "error", err)
		}
	}

	deps := &http.Dependencies{
		Discovery:          discoverySvc,
		Suggestions:        suggestionSvc,
		Locations:          locationSvc,
		Listings:           listingRepo,
		NATS:               natsConn,
		DB:                 db,
		Cache:              cache,
		SuggestionDebounce: time.Duration(cfg.Discovery.DebounceMs) * time.Millisecond,
		DefaultRadiusKm:    cfg.Discovery.DefaultRadiusKm,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "ClicBook Discovery API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.clicbook.fr",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Session-ID",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

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

	"github.com/samirrijal/halalfinder/internal/adapters/http"
	"github.com/samirrijal/halalfinder/internal/adapters/location"
	natsadapter "github.com/samirrijal/halalfinder/internal/adapters/nats"
	"github.com/samirrijal/halalfinder/internal/adapters/postgres"
	"github.com/samirrijal/halalfinder/internal/adapters/rest"
	"github.com/samirrijal/halalfinder/internal/adapters/valkey"
	"github.com/samirrijal/halalfinder/internal/core/ports"
	"github.com/samirrijal/halalfinder/internal/core/usecases"
	"github.com/samirrijal/halalfinder/internal/pkg/config"
	"github.com/samirrijal/halalfinder/internal/pkg/logging"
	"github.com/samirrijal/halalfinder/internal/pkg/metrics"
	"github.com/samirrijal/halalfinder/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("halalfinder-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Venue backend: hosted REST API or self-hosted Postgres
	var (
		countryRepo ports.CountryRepository
		cityRepo    ports.CityRepository
		venueRepo   ports.VenueRepository
		reviewRepo  ports.ReviewRepository
		db          *postgres.DB
	)
	switch cfg.Backend.Driver {
	case "postgres":
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		countryRepo = postgres.NewCountryRepo(db)
		cityRepo = postgres.NewCityRepo(db)
		venueRepo = postgres.NewVenueRepo(db)
		reviewRepo = postgres.NewReviewRepo(db)

		go func() {
			t := time.NewTicker(15 * time.Second)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					metrics.UpdateDBPoolMetrics(db.Pool.Stat())
				case <-ctx.Done():
					return
				}
			}
		}()
	default:
		client := rest.NewClient(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout())
		countryRepo = rest.NewCountryRepo(client)
		cityRepo = rest.NewCityRepo(client)
		venueRepo = rest.NewVenueRepo(client)
		reviewRepo = rest.NewReviewRepo(client)
	}

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		nc = nil
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Device location
	var locationProvider ports.LocationProvider
	if cfg.Location.GatewayURL != "" {
		gateway := location.NewGateway(cfg.Location.GatewayURL, cfg.Location.APIKey, cfg.Location.FixTimeout())
		locationProvider = location.NewProvider(gateway, cfg.Location.FixTimeout(), cfg.Location.MaxFixAge())
	} else {
		slog.Warn("no location gateway configured, nearby-by-device disabled")
		locationProvider = location.Unavailable()
	}

	// Favorites
	var favStore ports.FavoriteStore
	if cache != nil {
		favStore = valkey.NewFavoriteStore(cache)
	}

	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}
	var publisher ports.EventPublisher
	if nc != nil {
		publisher = nc
	}

	// Use cases
	countrySvc := usecases.NewCountryService(countryRepo, cacheSvc)
	citySvc := usecases.NewCityService(cityRepo, cacheSvc)
	venueSvc := usecases.NewVenueService(venueRepo)
	nearbySvc := usecases.NewNearbyService(venueRepo, locationProvider)
	reviewSvc := usecases.NewReviewService(reviewRepo, publisher)
	sessions := usecases.NewSessionManager(venueSvc, nearbySvc, favStore, publisher)

	deps := &http.Dependencies{
		Countries: countrySvc,
		Cities:    citySvc,
		Venues:    venueSvc,
		Nearby:    nearbySvc,
		Reviews:   reviewSvc,
		Sessions:  sessions,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "HalalFinder API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:19006, https://*.halalfinder.app",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "backend", cfg.Backend.Driver)
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

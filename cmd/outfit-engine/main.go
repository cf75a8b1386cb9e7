package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/wearly/outfit-engine/internal/api/http"
	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/config"
	"github.com/wearly/outfit-engine/internal/forecast"
	"github.com/wearly/outfit-engine/internal/kvstore"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/planner"
	"github.com/wearly/outfit-engine/internal/recommend"
	"github.com/wearly/outfit-engine/internal/scheduler"
	"github.com/wearly/outfit-engine/internal/stylist"
	"github.com/wearly/outfit-engine/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Device-scoped persistence; refuses to open without an identity.
	store, err := kvstore.Open(cfg.DBPath, cfg.DeviceID)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	// Shared HTTP client for outbound forecast calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var geo *providers.Geocoder
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGeocoder(cfg.GeocoderAPIKey)
	}
	source := providers.NewOpenMeteoSource(httpClient, cfg.ForecastBaseURL, geo)

	cache := forecast.New(source, store, cfg.Location)

	// Wardrobe: a JSON export of the app's item database, or empty.
	var wardrobe catalog.Catalog
	if cfg.WardrobeFile != "" {
		loaded, err := catalog.LoadFile(cfg.WardrobeFile)
		if err != nil {
			log.Fatalf("failed to load wardrobe: %v", err)
		}
		wardrobe = loaded
	} else {
		wardrobe = catalog.NewMemory()
	}

	// The model pass is optional; without a key the ranker stands alone.
	var refiner recommend.Refiner
	if cfg.GeminiAPIKey != "" {
		client, err := stylist.NewClient(cfg.GeminiAPIKey, cfg.GeminiBaseURL)
		if err != nil {
			log.Fatalf("failed to build generation client: %v", err)
		}
		refiner = stylist.NewReconciler(client)
	} else {
		log.Println("INFO: GEMINI_API_KEY not set; model refinement disabled")
	}

	prefs := outfit.Preferences{FavoriteColors: cfg.FavoriteColors}
	recommender := recommend.New(wardrobe, cache, refiner, prefs)
	plan := planner.New(store, cache)

	// Background refresh keeps the cache warm.
	sched := scheduler.New(cache, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "outfit-engine",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "outfit-engine",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Services{
		Catalog:   wardrobe,
		Cache:     cache,
		Recommend: recommender,
		Planner:   plan,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

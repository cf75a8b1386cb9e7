package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wearly/outfit-engine/internal/weather"
)

// AppConfig carries everything the engine needs at startup. DeviceID scopes
// persisted data and must be established before any store is opened.
type AppConfig struct {
	// DeviceID identifies the local profile. Required.
	DeviceID string

	// GeminiAPIKey enables the model refinement pass; empty disables it.
	GeminiAPIKey string
	// GeminiBaseURL overrides the generation endpoint (tests, proxies).
	GeminiBaseURL string

	// ForecastBaseURL overrides the Open-Meteo endpoint.
	ForecastBaseURL string
	// GeocoderAPIKey enables city-name locations.
	GeocoderAPIKey string

	// Location the engine fetches weather for.
	Location weather.Location

	// FavoriteColors feeds the ranker's preference bonus.
	FavoriteColors []string

	// DBPath is the SQLite file backing the key-value store.
	DBPath string

	// WardrobeFile optionally seeds the catalog from a JSON export.
	WardrobeFile string

	// RefreshInterval controls the background weather refresh job.
	RefreshInterval time.Duration

	// HTTPTimeout bounds outbound forecast calls.
	HTTPTimeout time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults. A
// missing device identity is a hard error: it indicates a broken
// initialization order upstream, not a condition to default around.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.DeviceID = os.Getenv("DEVICE_ID")
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("DEVICE_ID must be set before the engine starts")
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiBaseURL = os.Getenv("GEMINI_BASE_URL")
	cfg.ForecastBaseURL = os.Getenv("FORECAST_BASE_URL")
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	loc, err := loadLocation()
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	if colors := os.Getenv("FAVORITE_COLORS"); colors != "" {
		for _, c := range strings.Split(colors, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cfg.FavoriteColors = append(cfg.FavoriteColors, c)
			}
		}
	}

	cfg.DBPath = getenvDefault("DB_PATH", "outfit-engine.db")
	cfg.WardrobeFile = os.Getenv("WARDROBE_FILE")

	intervalStr := getenvDefault("REFRESH_INTERVAL", "1h")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// loadLocation accepts either WEATHER_LAT/WEATHER_LON or
// WEATHER_LOCATION_CITY (+ optional country). Coordinates win when both
// are present.
func loadLocation() (weather.Location, error) {
	var loc weather.Location

	latStr := os.Getenv("WEATHER_LAT")
	lonStr := os.Getenv("WEATHER_LON")
	if latStr != "" && lonStr != "" {
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return loc, fmt.Errorf("invalid WEATHER_LAT: %w", err)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return loc, fmt.Errorf("invalid WEATHER_LON: %w", err)
		}
		loc.Lat = &lat
		loc.Lon = &lon
	}

	loc.City = os.Getenv("WEATHER_LOCATION_CITY")
	loc.Country = os.Getenv("WEATHER_LOCATION_COUNTRY")

	if !loc.HasCoordinates() && loc.City == "" {
		return loc, fmt.Errorf("either WEATHER_LAT/WEATHER_LON or WEATHER_LOCATION_CITY must be set")
	}

	return loc, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

package providers

import (
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/wearly/outfit-engine/internal/weather"
)

// Geocoder resolves city/country locations to coordinates, memoizing results
// so a location is only geocoded once per process.
type Geocoder struct {
	mu    sync.Mutex
	cache map[string]weather.Location
}

// NewGeocoder configures the underlying geocoding API with apiKey.
func NewGeocoder(apiKey string) *Geocoder {
	geocoder.ApiKey = apiKey
	return &Geocoder{cache: make(map[string]weather.Location)}
}

// Resolve returns a copy of loc with Lat/Lon populated.
func (g *Geocoder) Resolve(loc weather.Location) (weather.Location, error) {
	if loc.HasCoordinates() {
		return loc, nil
	}
	if loc.City == "" {
		return loc, fmt.Errorf("geocode: location has neither coordinates nor a city")
	}

	g.mu.Lock()
	cached, ok := g.cache[loc.Key()]
	g.mu.Unlock()
	if ok {
		return cached, nil
	}

	address := geocoder.Address{
		City:    loc.City,
		Country: loc.Country,
	}
	point, err := geocoder.Geocoding(address)
	if err != nil {
		return loc, fmt.Errorf("geocode: %s: %w", loc.Key(), err)
	}

	lat, lon := point.Latitude, point.Longitude
	loc.Lat = &lat
	loc.Lon = &lon

	g.mu.Lock()
	g.cache[loc.Key()] = loc
	g.mu.Unlock()

	return loc, nil
}

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wearly/outfit-engine/internal/weather"
)

const defaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoSource implements weather.Source against the Open-Meteo API.
// Open-Meteo needs no API key; geocoding of city names is handled by the
// Geocoder before requests are built.
type OpenMeteoSource struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	geocoder *Geocoder
}

// NewOpenMeteoSource builds the production forecast source. baseURL may be
// empty to use the public endpoint; geocoder may be nil when callers always
// supply coordinates.
func NewOpenMeteoSource(client *http.Client, baseURL string, geocoder *Geocoder) *OpenMeteoSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	if baseURL == "" {
		baseURL = defaultOpenMeteoURL
	}

	return &OpenMeteoSource{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client: client,
			Backoff: BackoffConfig{
				MaxRetries:      3,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit:  cb,
		geocoder: geocoder,
	}
}

func (s *OpenMeteoSource) Name() string {
	return s.name
}

// Current fetches the present-moment observation for loc.
func (s *OpenMeteoSource) Current(ctx context.Context, loc weather.Location) (weather.Observation, error) {
	loc, err := s.resolve(loc)
	if err != nil {
		return weather.Observation{}, err
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
		values.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return weather.Observation{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			Humidity    float64 `json:"relative_humidity_2m"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Observation{}, fmt.Errorf("openmeteo: decode current: %w", err)
	}

	cur := payload.Current
	return weather.Observation{
		Temperature: int(math.Round(cur.Temperature)),
		Condition:   weather.MapWeatherCode(cur.WeatherCode, cur.WindSpeed),
		Humidity:    int(math.Round(cur.Humidity)),
		WindSpeed:   cur.WindSpeed,
		Description: weather.DescribeWeatherCode(cur.WeatherCode),
		Place:       placeLabel(loc),
	}, nil
}

// MultiDay fetches daily forecasts starting today. days is clamped to the
// provider horizon.
func (s *OpenMeteoSource) MultiDay(ctx context.Context, loc weather.Location, days int) ([]weather.DailyForecast, error) {
	loc, err := s.resolve(loc)
	if err != nil {
		return nil, err
	}

	if days < 1 {
		days = 1
	}
	if days > weather.MaxForecastDays {
		days = weather.MaxForecastDays
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", *loc.Lat))
		values.Set("longitude", fmt.Sprintf("%f", *loc.Lon))
		values.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,wind_speed_10m_max,relative_humidity_2m_mean")
		values.Set("forecast_days", fmt.Sprintf("%d", days))
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", s.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, s.httpCfg, s.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Daily struct {
			Time        []string  `json:"time"`
			WeatherCode []int     `json:"weather_code"`
			TempMax     []float64 `json:"temperature_2m_max"`
			TempMin     []float64 `json:"temperature_2m_min"`
			WindMax     []float64 `json:"wind_speed_10m_max"`
			Humidity    []float64 `json:"relative_humidity_2m_mean"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("openmeteo: decode daily: %w", err)
	}

	daily := payload.Daily
	out := make([]weather.DailyForecast, 0, len(daily.Time))
	for i, day := range daily.Time {
		date, err := time.ParseInLocation(weather.DayFormat, day, time.Local)
		if err != nil {
			continue
		}

		temp := 0.0
		if i < len(daily.TempMax) && i < len(daily.TempMin) {
			temp = (daily.TempMax[i] + daily.TempMin[i]) / 2
		}
		code := 0
		if i < len(daily.WeatherCode) {
			code = daily.WeatherCode[i]
		}
		wind := 0.0
		if i < len(daily.WindMax) {
			wind = daily.WindMax[i]
		}
		humidity := 0.0
		if i < len(daily.Humidity) {
			humidity = daily.Humidity[i]
		}

		out = append(out, weather.DailyForecast{
			Date: date,
			Observation: weather.Observation{
				Temperature: int(math.Round(temp)),
				Condition:   weather.MapWeatherCode(code, wind),
				Humidity:    int(math.Round(humidity)),
				WindSpeed:   wind,
				Description: weather.DescribeWeatherCode(code),
				Place:       placeLabel(loc),
			},
		})
	}

	return out, nil
}

// resolve fills in coordinates for city-only locations via the geocoder.
func (s *OpenMeteoSource) resolve(loc weather.Location) (weather.Location, error) {
	if loc.HasCoordinates() {
		return loc, nil
	}
	if s.geocoder == nil {
		return loc, fmt.Errorf("openmeteo: location %q has no coordinates and no geocoder is configured", loc.Key())
	}
	return s.geocoder.Resolve(loc)
}

func placeLabel(loc weather.Location) string {
	if loc.City != "" {
		return loc.City
	}
	return fmt.Sprintf("%.2f,%.2f", *loc.Lat, *loc.Lon)
}

var _ weather.Source = (*OpenMeteoSource)(nil)

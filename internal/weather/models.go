package weather

import (
	"time"
)

// DayFormat is the canonical calendar-date layout used for cache keys and
// schedule dates throughout the engine.
const DayFormat = "2006-01-02"

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionClear  Condition = "clear"
	ConditionCloudy Condition = "cloudy"
	ConditionRain   Condition = "rain"
	ConditionSnow   Condition = "snow"
	ConditionWind   Condition = "wind"
)

// Location represents the place we fetch weather for. Either coordinates
// or City/Country must be provided; coordinates win when both are set.
type Location struct {
	City    string   `json:"city,omitempty"`
	Country string   `json:"country,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location.
func (l Location) Key() string {
	if l.City != "" {
		return l.City + ":" + l.Country
	}
	return "coords"
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// Observation is the immutable weather view used for outfit decisions.
// Temperature is whole degrees Celsius, WindSpeed is km/h.
type Observation struct {
	Temperature int       `json:"temperatureC"`
	Condition   Condition `json:"condition"`
	Humidity    int       `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeedKmh"`
	Description string    `json:"description"`
	Place       string    `json:"place"`
}

// DailyForecast pairs a calendar date with its observation, as returned by
// multi-day provider fetches.
type DailyForecast struct {
	Date        time.Time   `json:"date"`
	Observation Observation `json:"observation"`
}

// DayKey truncates t to day granularity in its own timezone and returns
// the canonical cache key for that calendar date.
func DayKey(t time.Time) string {
	return t.Format(DayFormat)
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

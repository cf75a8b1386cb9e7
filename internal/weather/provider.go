package weather

import (
	"context"
)

// Source abstracts the external forecast provider (Open-Meteo in production).
// Implementations must be safe for concurrent use.
type Source interface {
	Name() string

	// Current returns the present-moment observation for loc.
	Current(ctx context.Context, loc Location) (Observation, error)

	// MultiDay returns one forecast per day starting today, for up to
	// days entries. Callers clamp days to the provider horizon.
	MultiDay(ctx context.Context, loc Location, days int) ([]DailyForecast, error)
}

// MaxForecastDays is the provider forecast horizon. Requests beyond it are
// clamped, never rejected.
const MaxForecastDays = 16

// Package forecast maintains a date-indexed, persisted cache of weather
// observations in front of the external forecast source. Weather is advisory
// for outfit decisions, so lookups degrade to defaults instead of failing.
package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/wearly/outfit-engine/internal/kvstore"
	"github.com/wearly/outfit-engine/internal/weather"
)

// storageKey is the fixed key the serialized cache lives under.
const storageKey = "forecast_cache"

// CurrentTTL bounds how long a same-day observation is served without a
// fresh provider call.
const CurrentTTL = time.Hour

// Entry is one cached observation. Future-dated entries carry no wall-clock
// TTL; they are replaced wholesale whenever a fresher batch covers the date.
type Entry struct {
	Date        string              `json:"date"`
	Observation weather.Observation `json:"observation"`
	FetchedAt   time.Time           `json:"fetchedAt"`
}

// Cache is the weather cache for a single location. All mutation goes
// through its methods; concurrent prefetches for overlapping ranges are
// resolved last-write-wins per date key.
type Cache struct {
	source weather.Source
	store  kvstore.Store
	loc    weather.Location

	mu      sync.RWMutex
	entries map[string]Entry

	now func() time.Time
}

// New builds a Cache and reloads any persisted state. Corrupt or
// unparseable persisted state is treated as an empty cache.
func New(source weather.Source, store kvstore.Store, loc weather.Location) *Cache {
	c := &Cache{
		source:  source,
		store:   store,
		loc:     loc,
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	c.load()
	return c
}

// Current returns today's observation, from cache when the entry is younger
// than CurrentTTL. On source failure it returns a static temperate default
// rather than an error.
func (c *Cache) Current(ctx context.Context) weather.Observation {
	todayKey := weather.DayKey(c.now())

	c.mu.RLock()
	entry, ok := c.entries[todayKey]
	c.mu.RUnlock()

	if ok && c.now().Sub(entry.FetchedAt) < CurrentTTL {
		return entry.Observation
	}

	obs, err := c.source.Current(ctx, c.loc)
	if err != nil {
		log.Printf("forecast: current fetch failed for %s: %v", c.loc.Key(), err)
		if ok {
			// A stale entry still beats the static default.
			return entry.Observation
		}
		return DefaultObservation(c.loc)
	}

	c.put(ctx, Entry{Date: todayKey, Observation: obs, FetchedAt: c.now()})
	return obs
}

// ForDate returns the observation for a calendar date. Past and same-day
// dates delegate to Current. Dates beyond the provider horizon clamp to the
// horizon boundary. A cache miss triggers one batch fetch sized to cover
// exactly the target date, and every date in the response is cached.
func (c *Cache) ForDate(ctx context.Context, date time.Time) weather.Observation {
	today := dayStart(c.now())
	target := dayStart(date)

	if !target.After(today) {
		return c.Current(ctx)
	}

	horizon := today.AddDate(0, 0, weather.MaxForecastDays-1)
	if target.After(horizon) {
		log.Printf("forecast: date %s beyond %d-day horizon; clamping to %s",
			weather.DayKey(target), weather.MaxForecastDays, weather.DayKey(horizon))
		target = horizon
	}

	key := weather.DayKey(target)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return entry.Observation
	}

	days := int(target.Sub(today).Hours()/24) + 1
	if err := c.fetchBatch(ctx, days); err != nil {
		log.Printf("forecast: batch fetch failed for %s: %v", c.loc.Key(), err)
		return DefaultObservation(c.loc)
	}

	c.mu.RLock()
	entry, ok = c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return DefaultObservation(c.loc)
	}
	return entry.Observation
}

// PrefetchRange issues a single batched fetch covering [start, end] and
// populates the cache for every returned date. Calendar-month rendering
// calls this before its per-day reads so that no per-day network calls are
// issued.
func (c *Cache) PrefetchRange(ctx context.Context, start, end time.Time) error {
	days := int(dayStart(end).Sub(dayStart(start)).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	if days > weather.MaxForecastDays {
		days = weather.MaxForecastDays
	}
	return c.fetchBatch(ctx, days)
}

// Peek returns the cached observation for a date without touching the
// network. Calendar rendering uses this after PrefetchRange so month views
// never issue per-day fetches.
func (c *Cache) Peek(date time.Time) (weather.Observation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[weather.DayKey(date)]
	if !ok {
		return weather.Observation{}, false
	}
	return entry.Observation, true
}

// Clear empties the cache and its persisted mirror.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	c.persist(ctx)
}

// Entries returns a snapshot of all cached entries, for diagnostics.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

func (c *Cache) fetchBatch(ctx context.Context, days int) error {
	forecasts, err := c.source.MultiDay(ctx, c.loc, days)
	if err != nil {
		return err
	}

	fetchedAt := c.now()
	c.mu.Lock()
	for _, f := range forecasts {
		key := weather.DayKey(f.Date)
		c.entries[key] = Entry{Date: key, Observation: f.Observation, FetchedAt: fetchedAt}
	}
	c.mu.Unlock()

	c.persist(ctx)
	return nil
}

func (c *Cache) put(ctx context.Context, entry Entry) {
	c.mu.Lock()
	c.entries[entry.Date] = entry
	c.mu.Unlock()
	c.persist(ctx)
}

func (c *Cache) persist(ctx context.Context) {
	c.mu.RLock()
	entries := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	payload, err := json.Marshal(entries)
	if err != nil {
		log.Printf("forecast: marshal cache: %v", err)
		return
	}
	if err := c.store.Set(ctx, storageKey, payload); err != nil {
		log.Printf("forecast: persist cache: %v", err)
	}
}

func (c *Cache) load() {
	payload, err := c.store.Get(context.Background(), storageKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("forecast: load cache: %v", err)
		}
		return
	}

	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		log.Printf("forecast: corrupt persisted cache; starting empty: %v", err)
		return
	}

	c.mu.Lock()
	for _, e := range entries {
		c.entries[e.Date] = e
	}
	c.mu.Unlock()
}

// DefaultObservation is the static temperate fallback served when the
// forecast source is unreachable.
func DefaultObservation(loc weather.Location) weather.Observation {
	return weather.Observation{
		Temperature: 20,
		Condition:   weather.ConditionClear,
		Humidity:    50,
		WindSpeed:   10,
		Description: "Mild conditions (forecast unavailable)",
		Place:       loc.City,
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

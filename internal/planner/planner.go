// Package planner maintains the outfit calendar: at most one scheduled
// outfit per date, persisted as a JSON array under a fixed key, joined with
// cached forecasts for month rendering.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wearly/outfit-engine/internal/forecast"
	"github.com/wearly/outfit-engine/internal/kvstore"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/weather"
)

// storageKey is the fixed key the serialized schedule lives under.
const storageKey = "outfit_schedule"

// Entry is one outfit-to-date assignment.
type Entry struct {
	ID        string           `json:"id"`
	Date      string           `json:"date"` // weather.DayFormat
	Outfit    outfit.Candidate `json:"outfit"`
	Occasion  string           `json:"occasion"`
	Notes     string           `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// UpdateFields is the partial-merge payload for Update. Nil fields are
// left untouched.
type UpdateFields struct {
	Occasion *string
	Notes    *string
	Outfit   *outfit.Candidate
}

// CalendarDay is the derived per-day view joining schedule and weather.
// It is computed on each query, never persisted.
type CalendarDay struct {
	Date      string               `json:"date"`
	HasOutfit bool                 `json:"hasOutfit"`
	Entry     *Entry               `json:"entry,omitempty"`
	Weather   *weather.Observation `json:"weather,omitempty"`
	IsToday   bool                 `json:"isToday"`
	IsPast    bool                 `json:"isPast"`
	IsFuture  bool                 `json:"isFuture"`
}

// Planner is the schedule store. Scheduling the same date twice replaces
// the previous entry; there is no locked or past-date-immutable state.
type Planner struct {
	store kvstore.Store
	cache *forecast.Cache

	mu     sync.RWMutex
	byDate map[string]Entry

	now func() time.Time
}

// New builds a Planner and reloads any persisted schedule. Corrupt state is
// treated as an empty schedule.
func New(store kvstore.Store, cache *forecast.Cache) *Planner {
	p := &Planner{
		store:  store,
		cache:  cache,
		byDate: make(map[string]Entry),
		now:    time.Now,
	}
	p.load()
	return p
}

// Schedule assigns an outfit to a date, replacing any existing entry for
// that exact date. The delete-then-insert happens under one lock and one
// persisted write, so readers never observe a transient empty date.
func (p *Planner) Schedule(ctx context.Context, date time.Time, o outfit.Candidate, occasion, notes string) Entry {
	key := weather.DayKey(date)
	now := p.now()

	o.ScheduledFor = key
	entry := Entry{
		ID:        uuid.NewString(),
		Date:      key,
		Outfit:    o,
		Occasion:  occasion,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	p.mu.Lock()
	p.byDate[key] = entry
	p.mu.Unlock()

	p.persist(ctx)
	return entry
}

// Update merges fields into the entry with the given id and bumps
// UpdatedAt. Unknown ids are a no-op, not an error.
func (p *Planner) Update(ctx context.Context, id string, fields UpdateFields) (Entry, bool) {
	p.mu.Lock()
	var updated Entry
	found := false
	for key, entry := range p.byDate {
		if entry.ID != id {
			continue
		}
		if fields.Occasion != nil {
			entry.Occasion = *fields.Occasion
		}
		if fields.Notes != nil {
			entry.Notes = *fields.Notes
		}
		if fields.Outfit != nil {
			o := *fields.Outfit
			o.ScheduledFor = entry.Date
			entry.Outfit = o
		}
		entry.UpdatedAt = p.now()
		p.byDate[key] = entry
		updated = entry
		found = true
		break
	}
	p.mu.Unlock()

	if found {
		p.persist(ctx)
	}
	return updated, found
}

// Remove deletes the entry with the given id. Unknown ids are a no-op.
func (p *Planner) Remove(ctx context.Context, id string) bool {
	p.mu.Lock()
	found := false
	for key, entry := range p.byDate {
		if entry.ID == id {
			delete(p.byDate, key)
			found = true
			break
		}
	}
	p.mu.Unlock()

	if found {
		p.persist(ctx)
	}
	return found
}

// RemoveByDate deletes the entry scheduled for the given date, if any.
func (p *Planner) RemoveByDate(ctx context.Context, date time.Time) bool {
	key := weather.DayKey(date)

	p.mu.Lock()
	_, found := p.byDate[key]
	if found {
		delete(p.byDate, key)
	}
	p.mu.Unlock()

	if found {
		p.persist(ctx)
	}
	return found
}

// ByDate returns the entry scheduled for a date.
func (p *Planner) ByDate(date time.Time) (Entry, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entry, ok := p.byDate[weather.DayKey(date)]
	return entry, ok
}

// Month returns one CalendarDay per day of the given month, joining the
// schedule with cached forecasts. The full month's weather is prefetched in
// one batch before any per-day read.
func (p *Planner) Month(ctx context.Context, year int, month time.Month) []CalendarDay {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 1, -1)

	if err := p.cache.PrefetchRange(ctx, start, end); err != nil {
		log.Printf("planner: month prefetch failed: %v", err)
	}

	today := weather.DayKey(p.now())
	days := make([]CalendarDay, 0, end.Day())

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := weather.DayKey(d)
		day := CalendarDay{
			Date:     key,
			IsToday:  key == today,
			IsPast:   key < today,
			IsFuture: key > today,
		}

		p.mu.RLock()
		entry, hasEntry := p.byDate[key]
		p.mu.RUnlock()
		if hasEntry {
			e := entry
			day.HasOutfit = true
			day.Entry = &e
		}

		if obs, ok := p.cache.Peek(d); ok {
			day.Weather = &obs
		}

		days = append(days, day)
	}

	return days
}

// Upcoming returns entries dated within the next withinDays days, today
// inclusive, sorted ascending by date.
func (p *Planner) Upcoming(withinDays int) []Entry {
	if withinDays <= 0 {
		withinDays = 7
	}

	today := weather.DayKey(p.now())
	last := weather.DayKey(p.now().AddDate(0, 0, withinDays))

	p.mu.RLock()
	var out []Entry
	for key, entry := range p.byDate {
		if key >= today && key <= last {
			out = append(out, entry)
		}
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (p *Planner) persist(ctx context.Context) {
	p.mu.RLock()
	entries := make([]Entry, 0, len(p.byDate))
	for _, entry := range p.byDate {
		entries = append(entries, entry)
	}
	p.mu.RUnlock()

	payload, err := json.Marshal(entries)
	if err != nil {
		log.Printf("planner: marshal schedule: %v", err)
		return
	}
	if err := p.store.Set(ctx, storageKey, payload); err != nil {
		log.Printf("planner: persist schedule: %v", err)
	}
}

func (p *Planner) load() {
	payload, err := p.store.Get(context.Background(), storageKey)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			log.Printf("planner: load schedule: %v", err)
		}
		return
	}

	var entries []Entry
	if err := json.Unmarshal(payload, &entries); err != nil {
		log.Printf("planner: corrupt persisted schedule; starting empty: %v", err)
		return
	}

	p.mu.Lock()
	for _, entry := range entries {
		p.byDate[entry.Date] = entry
	}
	p.mu.Unlock()
}

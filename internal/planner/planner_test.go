package planner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/forecast"
	"github.com/wearly/outfit-engine/internal/kvstore"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/weather"
)

// fakeSource serves a flat forecast so month joins have weather to show.
type fakeSource struct {
	start      time.Time
	multiCalls int
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Current(_ context.Context, _ weather.Location) (weather.Observation, error) {
	return weather.Observation{Temperature: 20, Condition: weather.ConditionClear}, nil
}

func (f *fakeSource) MultiDay(_ context.Context, _ weather.Location, days int) ([]weather.DailyForecast, error) {
	f.multiCalls++
	out := make([]weather.DailyForecast, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, weather.DailyForecast{
			Date:        f.start.AddDate(0, 0, i),
			Observation: weather.Observation{Temperature: 20, Condition: weather.ConditionClear},
		})
	}
	return out, nil
}

func testCandidate(name string) outfit.Candidate {
	return outfit.Candidate{
		ID: "cand-" + name,
		Items: []catalog.Item{
			{ID: "1", Name: "Blue Shirt", Category: "Top", Available: true},
			{ID: "2", Name: "Black Jeans", Category: "Bottom", Available: true},
		},
		Confidence: 85,
		Reasoning:  "test outfit " + name,
		CreatedAt:  time.Now(),
	}
}

func newTestPlanner(t *testing.T, now time.Time) (*Planner, *kvstore.MemoryStore, *fakeSource) {
	t.Helper()

	store := kvstore.NewMemoryStore()
	src := &fakeSource{start: now}
	cache := forecast.New(src, store, weather.Location{City: "Berlin"})

	p := New(store, cache)
	p.now = func() time.Time { return now }
	return p, store, src
}

func TestScheduleReplacesSameDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
	p, _, _ := newTestPlanner(t, now)
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	first := p.Schedule(context.Background(), date, testCandidate("a"), "casual", "")
	second := p.Schedule(context.Background(), date, testCandidate("b"), "dinner", "table at 8")

	entry, ok := p.ByDate(date)
	require.True(t, ok)
	assert.Equal(t, second.ID, entry.ID)
	assert.Equal(t, "cand-b", entry.Outfit.ID)
	assert.NotEqual(t, first.ID, entry.ID)
	assert.Equal(t, "2025-06-15", entry.Outfit.ScheduledFor)

	// Exactly one entry within the week around the date.
	p.now = func() time.Time { return date }
	assert.Len(t, p.Upcoming(7), 1)
}

func TestMonthShowsReplacementOnly(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
	p, _, src := newTestPlanner(t, now)
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	p.Schedule(context.Background(), date, testCandidate("a"), "casual", "")
	p.Schedule(context.Background(), date, testCandidate("b"), "casual", "")

	days := p.Month(context.Background(), 2025, time.June)
	require.Len(t, days, 30)
	assert.Equal(t, 1, src.multiCalls, "month render prefetches once")

	scheduled := 0
	for _, day := range days {
		if day.HasOutfit {
			scheduled++
			assert.Equal(t, "2025-06-15", day.Date)
			require.NotNil(t, day.Entry)
			assert.Equal(t, "cand-b", day.Entry.Outfit.ID)
		}
	}
	assert.Equal(t, 1, scheduled)
}

func TestMonthFlagsAndWeatherJoin(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
	p, _, _ := newTestPlanner(t, now)

	days := p.Month(context.Background(), 2025, time.June)
	require.Len(t, days, 30)

	for _, day := range days {
		switch {
		case day.Date < "2025-06-10":
			assert.True(t, day.IsPast, day.Date)
		case day.Date == "2025-06-10":
			assert.True(t, day.IsToday)
		default:
			assert.True(t, day.IsFuture, day.Date)
		}
	}

	// Prefetch starts today, so today and onward carry cached weather.
	assert.NotNil(t, days[9].Weather)
	assert.Equal(t, 20, days[9].Weather.Temperature)
}

func TestUpdateMergesAndBumpsTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
	p, _, _ := newTestPlanner(t, now)
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	entry := p.Schedule(context.Background(), date, testCandidate("a"), "casual", "")

	later := now.Add(time.Hour)
	p.now = func() time.Time { return later }

	notes := "bring umbrella"
	updated, found := p.Update(context.Background(), entry.ID, UpdateFields{Notes: &notes})
	require.True(t, found)
	assert.Equal(t, "bring umbrella", updated.Notes)
	assert.Equal(t, "casual", updated.Occasion, "unset fields stay untouched")
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, found = p.Update(context.Background(), "missing-id", UpdateFields{Notes: &notes})
	assert.False(t, found, "unknown id is a no-op")
}

func TestRemoveAndRemoveByDate(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
	p, _, _ := newTestPlanner(t, now)
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	entry := p.Schedule(context.Background(), date, testCandidate("a"), "casual", "")
	assert.True(t, p.Remove(context.Background(), entry.ID))
	_, ok := p.ByDate(date)
	assert.False(t, ok)

	p.Schedule(context.Background(), date, testCandidate("b"), "casual", "")
	assert.True(t, p.RemoveByDate(context.Background(), date))
	assert.False(t, p.RemoveByDate(context.Background(), date))
}

func TestUpcomingSortedAndBounded(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
	p, _, _ := newTestPlanner(t, now)

	p.Schedule(context.Background(), now.AddDate(0, 0, 5), testCandidate("later"), "", "")
	p.Schedule(context.Background(), now, testCandidate("today"), "", "")
	p.Schedule(context.Background(), now.AddDate(0, 0, 2), testCandidate("soon"), "", "")
	p.Schedule(context.Background(), now.AddDate(0, 0, 20), testCandidate("far"), "", "")
	p.Schedule(context.Background(), now.AddDate(0, 0, -1), testCandidate("past"), "", "")

	upcoming := p.Upcoming(7)
	require.Len(t, upcoming, 3, "past and beyond-window entries are excluded")
	assert.Equal(t, "cand-today", upcoming[0].Outfit.ID)
	assert.Equal(t, "cand-soon", upcoming[1].Outfit.ID)
	assert.Equal(t, "cand-later", upcoming[2].Outfit.ID)
}

func TestScheduleSurvivesRestart(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.Local)
	p, store, src := newTestPlanner(t, now)
	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.Local)

	p.Schedule(context.Background(), date, testCandidate("a"), "casual", "note")

	// Simulated restart over the same store.
	cache := forecast.New(src, store, weather.Location{City: "Berlin"})
	reloaded := New(store, cache)
	reloaded.now = func() time.Time { return now }

	entry, ok := reloaded.ByDate(date)
	require.True(t, ok)
	assert.Equal(t, "cand-a", entry.Outfit.ID)
	assert.Equal(t, "note", entry.Notes)
}

func TestCorruptScheduleStartsEmpty(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), storageKey, []byte("][")))

	src := &fakeSource{start: time.Now()}
	cache := forecast.New(src, store, weather.Location{City: "Berlin"})
	p := New(store, cache)

	assert.Empty(t, p.Upcoming(7))
}

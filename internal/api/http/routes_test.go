package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/forecast"
	"github.com/wearly/outfit-engine/internal/kvstore"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/planner"
	"github.com/wearly/outfit-engine/internal/recommend"
	"github.com/wearly/outfit-engine/internal/weather"
)

type fakeSource struct{}

func (fakeSource) Name() string { return "fake" }

func (fakeSource) Current(_ context.Context, _ weather.Location) (weather.Observation, error) {
	return weather.Observation{Temperature: 22, Condition: weather.ConditionClear}, nil
}

func (fakeSource) MultiDay(_ context.Context, _ weather.Location, days int) ([]weather.DailyForecast, error) {
	out := make([]weather.DailyForecast, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, weather.DailyForecast{
			Date:        time.Now().AddDate(0, 0, i),
			Observation: weather.Observation{Temperature: 22, Condition: weather.ConditionClear},
		})
	}
	return out, nil
}

func newTestApp(items ...catalog.Item) *fiber.App {
	store := kvstore.NewMemoryStore()
	cache := forecast.New(fakeSource{}, store, weather.Location{City: "Berlin"})
	cat := catalog.NewMemory(items...)

	app := fiber.New()
	RegisterRoutes(app, Services{
		Catalog:   cat,
		Cache:     cache,
		Recommend: recommend.New(cat, cache, nil, outfit.Preferences{}),
		Planner:   planner.New(store, cache),
	})
	return app
}

// TestWeatherDateValidation verifies that malformed dates are rejected before
// any forecast lookup happens.
func TestWeatherDateValidation(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/date/June-1st", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/weather/date/2025-06-15", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func TestSuggestEmptyWardrobe(t *testing.T) {
	app := newTestApp()

	body := bytes.NewBufferString(`{"occasion":"casual"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/outfits/suggest", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var got recommend.Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !got.EmptyWardrobe {
		t.Fatalf("expected emptyWardrobe to be true")
	}
}

func TestScheduleValidation(t *testing.T) {
	app := newTestApp(
		catalog.Item{ID: "1", Name: "Blue Shirt", Category: "Top", Available: true},
		catalog.Item{ID: "2", Name: "Black Jeans", Category: "Bottom", Available: true},
	)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing date", `{"itemIds":["1","2"]}`, http.StatusBadRequest},
		{"bad date format", `{"date":"15/06/2025","itemIds":["1","2"]}`, http.StatusBadRequest},
		{"no items", `{"date":"2025-06-15","itemIds":[]}`, http.StatusBadRequest},
		{"unknown item", `{"date":"2025-06-15","itemIds":["1","99"]}`, http.StatusBadRequest},
		{"valid", `{"date":"2025-06-15","itemIds":["1","2"],"occasion":"casual"}`, http.StatusCreated},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule", bytes.NewBufferString(tc.body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}

func TestScheduleLifecycle(t *testing.T) {
	app := newTestApp(
		catalog.Item{ID: "1", Name: "Blue Shirt", Category: "Top", Available: true},
		catalog.Item{ID: "2", Name: "Black Jeans", Category: "Bottom", Available: true},
	)

	body := bytes.NewBufferString(`{"date":"2025-06-15","itemIds":["1","2"],"occasion":"casual"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedule", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}

	var entry planner.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}
	if entry.ID == "" {
		t.Fatalf("expected entry to carry an id")
	}

	// Patch the notes, leave the occasion untouched.
	patch := bytes.NewBufferString(`{"notes":"bring umbrella"}`)
	req = httptest.NewRequest(http.MethodPatch, "/api/v1/schedule/"+entry.ID, patch)
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var updated planner.Entry
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}
	if updated.Notes != "bring umbrella" {
		t.Fatalf("expected notes to update, got %q", updated.Notes)
	}
	if updated.Occasion != "casual" {
		t.Fatalf("expected occasion to be untouched, got %q", updated.Occasion)
	}

	// Delete by id, then confirm a second delete 404s.
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/schedule/"+entry.ID, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/schedule/"+entry.ID, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestUpcomingDaysValidation(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/upcoming?days=0", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/schedule/upcoming?days=60", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestCalendarValidation(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/2025/13", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/calendar/2025/6", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

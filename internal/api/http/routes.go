package httpapi

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/forecast"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/planner"
	"github.com/wearly/outfit-engine/internal/recommend"
	"github.com/wearly/outfit-engine/internal/weather"
)

var validate = validator.New()

// Services bundles the engine components the HTTP surface exposes.
type Services struct {
	Catalog   catalog.Catalog
	Cache     *forecast.Cache
	Recommend *recommend.Service
	Planner   *planner.Planner
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc Services) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		return c.JSON(svc.Cache.Current(c.Context()))
	})

	v1.Get("/weather/date/:date", func(c *fiber.Ctx) error {
		date, err := parseDay(c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(svc.Cache.ForDate(c.Context(), date))
	})

	v1.Post("/outfits/suggest", func(c *fiber.Ctx) error {
		var req suggestRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var (
			suggestion recommend.Suggestion
			err        error
		)
		if req.Date != "" {
			date, parseErr := parseDay(req.Date)
			if parseErr != nil {
				return fiber.NewError(fiber.StatusBadRequest, parseErr.Error())
			}
			suggestion, err = svc.Recommend.SuggestForDate(c.Context(), date, req.Occasion)
		} else {
			suggestion, err = svc.Recommend.Suggest(c.Context(), req.Occasion)
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build suggestion")
		}

		return c.JSON(suggestion)
	})

	v1.Post("/schedule", func(c *fiber.Ctx) error {
		var req scheduleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		date, err := parseDay(req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		items, err := resolveItems(c, svc.Catalog, req.ItemIDs)
		if err != nil {
			return err
		}

		candidate := outfit.Candidate{
			ID:         uuid.NewString(),
			Items:      items,
			Occasion:   req.Occasion,
			Weather:    svc.Cache.ForDate(c.Context(), date),
			Confidence: req.Confidence,
			Reasoning:  req.Reasoning,
			CreatedAt:  time.Now(),
		}

		entry := svc.Planner.Schedule(c.Context(), date, candidate, req.Occasion, req.Notes)
		return c.Status(fiber.StatusCreated).JSON(entry)
	})

	v1.Patch("/schedule/:id", func(c *fiber.Ctx) error {
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		entry, found := svc.Planner.Update(c.Context(), c.Params("id"), planner.UpdateFields{
			Occasion: req.Occasion,
			Notes:    req.Notes,
		})
		if !found {
			return fiber.NewError(fiber.StatusNotFound, "schedule entry not found")
		}
		return c.JSON(entry)
	})

	v1.Delete("/schedule/:id", func(c *fiber.Ctx) error {
		if !svc.Planner.Remove(c.Context(), c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, "schedule entry not found")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/schedule/date/:date", func(c *fiber.Ctx) error {
		date, err := parseDay(c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !svc.Planner.RemoveByDate(c.Context(), date) {
			return fiber.NewError(fiber.StatusNotFound, "no outfit scheduled for that date")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/schedule/upcoming", func(c *fiber.Ctx) error {
		days := 7
		if raw := c.Query("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > 31 {
				return fiber.NewError(fiber.StatusBadRequest, "days must be an integer between 1 and 31")
			}
			days = parsed
		}
		return c.JSON(fiber.Map{"entries": svc.Planner.Upcoming(days)})
	})

	v1.Get("/calendar/:year/:month", func(c *fiber.Ctx) error {
		year, err := strconv.Atoi(c.Params("year"))
		if err != nil || year < 1970 || year > 2200 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid year")
		}
		month, err := strconv.Atoi(c.Params("month"))
		if err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid month")
		}

		return c.JSON(fiber.Map{
			"year":  year,
			"month": month,
			"days":  svc.Planner.Month(c.Context(), year, time.Month(month)),
		})
	})
}

// suggestRequest is the body for POST /outfits/suggest.
type suggestRequest struct {
	Occasion string `json:"occasion"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// scheduleRequest is the body for POST /schedule.
type scheduleRequest struct {
	Date       string   `json:"date" validate:"required,datetime=2006-01-02"`
	ItemIDs    []string `json:"itemIds" validate:"required,min=1,max=5"`
	Occasion   string   `json:"occasion"`
	Notes      string   `json:"notes"`
	Confidence int      `json:"confidence" validate:"omitempty,min=0,max=100"`
	Reasoning  string   `json:"reasoning"`
}

// updateRequest is the body for PATCH /schedule/:id. Nil fields are left
// untouched.
type updateRequest struct {
	Occasion *string `json:"occasion"`
	Notes    *string `json:"notes"`
}

func parseDay(raw string) (time.Time, error) {
	return time.ParseInLocation(weather.DayFormat, raw, time.Local)
}

func resolveItems(c *fiber.Ctx, cat catalog.Catalog, ids []string) ([]catalog.Item, error) {
	available, err := cat.ListAvailableItems(c.Context())
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to read wardrobe")
	}

	byID := make(map[string]catalog.Item, len(available))
	for _, item := range available {
		byID[item.ID] = item
	}

	items := make([]catalog.Item, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, fiber.NewError(fiber.StatusBadRequest, "unknown or unavailable item: "+id)
		}
		items = append(items, item)
	}
	return items, nil
}

// Package recommend orchestrates the suggestion flow: weather from the
// forecast cache, heuristic ranking, then an optional model refinement pass
// that is reconciled against the literal wardrobe.
package recommend

import (
	"context"
	"log"
	"time"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/forecast"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/stylist"
	"github.com/wearly/outfit-engine/internal/weather"
)

// Suggestion source labels, surfaced so the UI can distinguish a refined
// result from a degraded one without relying on exceptions.
const (
	SourceModel    = "model"
	SourceRanker   = "ranker"
	SourceFallback = "fallback"
)

// Refiner is the optional model pass, satisfied by stylist.Reconciler.
type Refiner interface {
	Refine(ctx context.Context, items []catalog.Item, obs weather.Observation, occasion string) (outfit.Candidate, error)
}

// Suggestion is the result of one recommendation pass. EmptyWardrobe is a
// distinct state, not an error: there was simply nothing to rank.
type Suggestion struct {
	Best          *outfit.Candidate   `json:"best,omitempty"`
	Alternatives  []outfit.Candidate  `json:"alternatives,omitempty"`
	Weather       weather.Observation `json:"weather"`
	Source        string              `json:"source"`
	EmptyWardrobe bool                `json:"emptyWardrobe"`
}

// Service wires the catalog, forecast cache, ranker preferences, and the
// optional refiner together. refiner may be nil when no model is configured.
type Service struct {
	catalog catalog.Catalog
	cache   *forecast.Cache
	refiner Refiner
	prefs   outfit.Preferences
}

// New builds the recommendation service.
func New(cat catalog.Catalog, cache *forecast.Cache, refiner Refiner, prefs outfit.Preferences) *Service {
	return &Service{
		catalog: cat,
		cache:   cache,
		refiner: refiner,
		prefs:   prefs,
	}
}

// Suggest produces today's outfit suggestion.
func (s *Service) Suggest(ctx context.Context, occasion string) (Suggestion, error) {
	return s.suggest(ctx, time.Now(), occasion)
}

// SuggestForDate produces a suggestion scored against the forecast for the
// given date.
func (s *Service) SuggestForDate(ctx context.Context, date time.Time, occasion string) (Suggestion, error) {
	return s.suggest(ctx, date, occasion)
}

func (s *Service) suggest(ctx context.Context, date time.Time, occasion string) (Suggestion, error) {
	items, err := s.catalog.ListAvailableItems(ctx)
	if err != nil {
		return Suggestion{}, err
	}

	obs := s.cache.ForDate(ctx, date)

	if len(items) == 0 {
		return Suggestion{Weather: obs, EmptyWardrobe: true}, nil
	}

	ranked := outfit.Rank(items, obs, s.prefs, occasion)

	// Model refinement is best-effort; any failure defers to the ranker.
	if s.refiner != nil {
		refined, err := s.refiner.Refine(ctx, items, obs, occasion)
		if err == nil {
			return Suggestion{
				Best:         &refined,
				Alternatives: ranked,
				Weather:      obs,
				Source:       SourceModel,
			}, nil
		}
		log.Printf("recommend: model refinement failed, using local ranking: %v", err)

		if len(ranked) > 0 {
			best := ranked[0]
			best.Confidence = stylist.FallbackConfidence
			best.Reasoning = stylist.FallbackReasoning(obs)
			return Suggestion{
				Best:         &best,
				Alternatives: ranked[1:],
				Weather:      obs,
				Source:       SourceFallback,
			}, nil
		}
	}

	if len(ranked) > 0 {
		best := ranked[0]
		return Suggestion{
			Best:         &best,
			Alternatives: ranked[1:],
			Weather:      obs,
			Source:       SourceRanker,
		}, nil
	}

	// Items exist but none formed a rankable combination; fall back to the
	// deterministic weather-weighted pick.
	best := stylist.FallbackSuggestion(items, obs, occasion)
	return Suggestion{
		Best:    &best,
		Weather: obs,
		Source:  SourceFallback,
	}, nil
}

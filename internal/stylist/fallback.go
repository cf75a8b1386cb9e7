package stylist

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/common"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/weather"
)

// FallbackConfidence is the fixed confidence attached to any locally built
// fallback suggestion.
const FallbackConfidence = 60

var nowFunc = time.Now

// FallbackReasoning is the templated reasoning used whenever the model pass
// fails and a local selection stands in.
func FallbackReasoning(obs weather.Observation) string {
	return fmt.Sprintf("Basic weather-appropriate selection for %d°C and %s conditions.",
		obs.Temperature, obs.Condition)
}

// FallbackSuggestion deterministically picks a weather-fit outfit from the
// available items: layered pieces when cold, breathable materials when hot,
// rain protection when raining, otherwise the first few items. It never
// fails; with an empty wardrobe it returns a zero-item candidate the caller
// treats as the empty-wardrobe state.
func FallbackSuggestion(items []catalog.Item, obs weather.Observation, occasion string) outfit.Candidate {
	available := availableOnly(items)

	var picked []catalog.Item
	switch {
	case obs.Temperature < 15:
		picked = pickLayered(available)
	case obs.Temperature > 25:
		picked = pickBreathable(available)
	case obs.Condition == weather.ConditionRain:
		picked = pickRainReady(available)
	}
	if len(picked) == 0 {
		picked = firstN(available, 3)
	}
	if len(picked) > maxOutfitItems {
		picked = picked[:maxOutfitItems]
	}

	label := occasion
	if label == "" && len(picked) > 0 {
		label = outfit.OccasionFor(picked[0].Formality)
	}

	return outfit.Candidate{
		ID:         uuid.NewString(),
		Items:      picked,
		Occasion:   label,
		Weather:    obs,
		Confidence: FallbackConfidence,
		Reasoning:  FallbackReasoning(obs),
		CreatedAt:  nowFunc(),
	}
}

// pickLayered prefers outerwear + top + bottom.
func pickLayered(items []catalog.Item) []catalog.Item {
	var picked []catalog.Item
	if outer, ok := firstWhere(items, outfit.IsOuterwear); ok {
		picked = append(picked, outer)
	}
	if top, ok := firstWhere(items, outfit.IsTop); ok {
		picked = append(picked, top)
	}
	if bottom, ok := firstWhere(items, outfit.IsBottom); ok {
		picked = append(picked, bottom)
	}
	return dedupe(picked)
}

// pickBreathable prefers up to three lightweight-fabric items.
func pickBreathable(items []catalog.Item) []catalog.Item {
	var picked []catalog.Item
	for _, item := range items {
		if outfit.IsLightweight(item) {
			picked = append(picked, item)
		}
		if len(picked) == 3 {
			break
		}
	}
	return picked
}

// pickRainReady leads with an item whose name suggests rain protection.
func pickRainReady(items []catalog.Item) []catalog.Item {
	var picked []catalog.Item
	for _, item := range items {
		if common.FoldContains(item.Name, "rain") || common.FoldContains(item.Name, "waterproof") {
			picked = append(picked, item)
			break
		}
	}
	if top, ok := firstWhere(items, outfit.IsTop); ok {
		picked = append(picked, top)
	}
	if bottom, ok := firstWhere(items, outfit.IsBottom); ok {
		picked = append(picked, bottom)
	}
	return dedupe(picked)
}

func firstWhere(items []catalog.Item, pred func(catalog.Item) bool) (catalog.Item, bool) {
	for _, item := range items {
		if pred(item) {
			return item, true
		}
	}
	return catalog.Item{}, false
}

func firstN(items []catalog.Item, n int) []catalog.Item {
	if len(items) < n {
		n = len(items)
	}
	return items[:n]
}

func dedupe(items []catalog.Item) []catalog.Item {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}

package outfit

import (
	"math"
	"sort"
	"strings"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/common"
	"github.com/wearly/outfit-engine/internal/weather"
)

// Generation bounds. Pair candidates stop at maxPairCandidates; dress
// candidates top the list up to maxCandidates total.
const (
	maxPairCandidates  = 8
	maxDressCandidates = 2
	maxCandidates      = 10
)

// lightweightMaterials are treated as breathable in warm weather.
var lightweightMaterials = []string{"cotton", "linen", "bamboo"}

// Role bucket keywords, matched against the item category.
var (
	topKeywords       = []string{"top", "shirt", "blouse", "tee", "sweater", "hoodie", "polo"}
	bottomKeywords    = []string{"bottom", "pant", "jean", "trouser", "skirt", "short", "chino", "legging"}
	dressKeywords     = []string{"dress", "gown", "jumpsuit"}
	shoeKeywords      = []string{"shoe", "sneaker", "boot", "sandal", "loafer", "heel"}
	outerwearKeywords = []string{"outerwear", "jacket", "coat", "blazer", "cardigan", "parka"}
)

// Role predicates, shared with the stylist's local fallback picker.

func IsTop(item catalog.Item) bool {
	return common.HasAny(strings.ToLower(item.Category), topKeywords...)
}

func IsBottom(item catalog.Item) bool {
	return common.HasAny(strings.ToLower(item.Category), bottomKeywords...)
}

func IsDress(item catalog.Item) bool {
	return common.HasAny(strings.ToLower(item.Category), dressKeywords...)
}

func IsShoe(item catalog.Item) bool {
	return common.HasAny(strings.ToLower(item.Category), shoeKeywords...)
}

func IsOuterwear(item catalog.Item) bool {
	return common.HasAny(strings.ToLower(item.Category), outerwearKeywords...)
}

// IsLightweight reports whether the item's material reads as breathable.
func IsLightweight(item catalog.Item) bool {
	return common.HasAny(strings.ToLower(item.Material), lightweightMaterials...)
}

type roleBuckets struct {
	tops      []catalog.Item
	bottoms   []catalog.Item
	dresses   []catalog.Item
	shoes     []catalog.Item
	outerwear []catalog.Item
}

// Rank enumerates bounded outfit combinations from the available items and
// returns them scored against the weather, sorted by confidence descending.
// An empty wardrobe yields an empty (non-nil-safe) result, never an error.
func Rank(items []catalog.Item, obs weather.Observation, prefs Preferences, occasion string) []Candidate {
	available := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if item.Available {
			available = append(available, item)
		}
	}
	if len(available) == 0 {
		return nil
	}

	buckets := bucketByRole(available)
	combos := generateCombinations(buckets, obs)

	candidates := make([]Candidate, 0, len(combos))
	for _, combo := range combos {
		score := scoreCombination(combo, obs, prefs)
		confidence := int(math.Round(score * 100))

		label := occasion
		if label == "" {
			label = OccasionFor(combo[0].Formality)
		}

		candidates = append(candidates, newCandidate(
			combo, label, obs, confidence, buildReasoning(combo, obs, prefs),
		))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates
}

func bucketByRole(items []catalog.Item) roleBuckets {
	var b roleBuckets
	for _, item := range items {
		if IsTop(item) {
			b.tops = append(b.tops, item)
		}
		if IsBottom(item) {
			b.bottoms = append(b.bottoms, item)
		}
		if IsDress(item) {
			b.dresses = append(b.dresses, item)
		}
		if IsShoe(item) {
			b.shoes = append(b.shoes, item)
		}
		if IsOuterwear(item) {
			b.outerwear = append(b.outerwear, item)
		}
	}
	return b
}

// generateCombinations builds top+bottom pairs (capped), then up to two
// dress outfits. Shoe selection is deliberately naive: pairs always take
// the first shoe, dresses rotate by index.
func generateCombinations(b roleBuckets, obs weather.Observation) [][]catalog.Item {
	var combos [][]catalog.Item

pairs:
	for _, top := range b.tops {
		for _, bottom := range b.bottoms {
			if len(combos) >= maxPairCandidates {
				break pairs
			}

			combo := []catalog.Item{top, bottom}
			if len(b.shoes) > 0 {
				combo = append(combo, b.shoes[0])
			}
			if obs.Temperature < 20 && len(b.outerwear) > 0 {
				combo = append(combo, b.outerwear[0])
			}
			combos = append(combos, combo)
		}
	}

	for i, dress := range b.dresses {
		if i >= maxDressCandidates || len(combos) >= maxCandidates {
			break
		}

		combo := []catalog.Item{dress}
		if len(b.shoes) > 0 {
			combo = append(combo, b.shoes[i%len(b.shoes)])
		}
		combos = append(combos, combo)
	}

	return combos
}

// scoreCombination applies the weighted heuristics. The base score is 0.5;
// bonuses are additive and the total clamps at 1.0 (no renormalization).
func scoreCombination(combo []catalog.Item, obs weather.Observation, prefs Preferences) float64 {
	score := 0.5

	if distinctColors(combo) <= 3 {
		score += 0.2
	}
	if obs.Temperature > 25 && anyLightweight(combo) {
		score += 0.15
	}
	if obs.Temperature < 15 && anyWarmLayer(combo) {
		score += 0.15
	}
	if matchesFavoriteColor(combo, prefs) {
		score += 0.1
	}
	if n := distinctFormalities(combo); n > 0 && n <= 2 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func buildReasoning(combo []catalog.Item, obs weather.Observation, prefs Preferences) string {
	var clauses []string

	if obs.Temperature > 25 && anyLightweight(combo) {
		clauses = append(clauses, "light breathable fabrics suit the warm weather")
	}
	if obs.Temperature < 15 && anyWarmLayer(combo) {
		clauses = append(clauses, "warm layers handle the cold")
	}
	if distinctColors(combo) <= 2 {
		clauses = append(clauses, "the colors coordinate well")
	}
	if matchesFavoriteColor(combo, prefs) {
		clauses = append(clauses, "it features your favorite colors")
	}

	if len(clauses) == 0 {
		return "A great combination for today."
	}
	return "Picked because " + strings.Join(clauses, " and ") + "."
}

func distinctColors(combo []catalog.Item) int {
	seen := make(map[string]struct{})
	for _, item := range combo {
		if item.Color == "" {
			continue
		}
		seen[strings.ToLower(item.Color)] = struct{}{}
	}
	return len(seen)
}

// distinctFormalities counts distinct recorded formality levels. Items with
// no formality recorded do not count toward (or against) coherence.
func distinctFormalities(combo []catalog.Item) int {
	seen := make(map[string]struct{})
	for _, item := range combo {
		if item.Formality == "" {
			continue
		}
		seen[strings.ToLower(item.Formality)] = struct{}{}
	}
	return len(seen)
}

func anyLightweight(combo []catalog.Item) bool {
	for _, item := range combo {
		if IsLightweight(item) {
			return true
		}
	}
	return false
}

func anyWarmLayer(combo []catalog.Item) bool {
	for _, item := range combo {
		if IsOuterwear(item) || common.FoldContains(item.Material, "wool") {
			return true
		}
	}
	return false
}

func matchesFavoriteColor(combo []catalog.Item, prefs Preferences) bool {
	for _, item := range combo {
		for _, fav := range prefs.FavoriteColors {
			if common.EqualFold(item.Color, fav) {
				return true
			}
		}
	}
	return false
}

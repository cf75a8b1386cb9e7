package stylist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/outfit"
	"github.com/wearly/outfit-engine/internal/weather"
)

// Confidence bounds for a successfully reconciled model suggestion. A parsed
// and matched answer is assumed at least moderately trustworthy, so the
// floor applies even when the model reports a lower number.
const (
	minModelConfidence = 60
	maxModelConfidence = 100
)

// minResolvedItems is the smallest outfit a model pass may produce; below
// it the whole pass counts as failed.
const minResolvedItems = 2

// maxOutfitItems caps an outfit's size.
const maxOutfitItems = 5

var (
	// ErrTooFewMatches means the model's selection did not map onto enough
	// real wardrobe items. Recoverable; callers fall back to the ranker.
	ErrTooFewMatches = errors.New("stylist: fewer than 2 suggested items resolved")

	// ErrNoItems means there was nothing available to suggest from.
	ErrNoItems = errors.New("stylist: no available items")
)

// Generator is the remote text-generation dependency, satisfied by Client.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Reconciler sends the wardrobe and weather to the model and maps the
// answer back onto literal inventory records.
type Reconciler struct {
	generator Generator
}

// NewReconciler builds a Reconciler around a generation client.
func NewReconciler(generator Generator) *Reconciler {
	return &Reconciler{generator: generator}
}

// suggestion is the strict JSON shape the model is instructed to return.
type suggestion struct {
	SelectedItems []string `json:"selectedItems"`
	Confidence    float64  `json:"confidence"`
	Reasoning     string   `json:"reasoning"`
}

// Refine asks the model for one outfit and reconciles it against the
// inventory. Every error it returns is recoverable: the caller is expected
// to fall back to the combinatorial ranker's top candidate.
func (r *Reconciler) Refine(ctx context.Context, items []catalog.Item, obs weather.Observation, occasion string) (outfit.Candidate, error) {
	available := availableOnly(items)
	if len(available) == 0 {
		return outfit.Candidate{}, ErrNoItems
	}

	text, err := r.generator.Generate(ctx, buildPrompt(available, obs, occasion))
	if err != nil {
		return outfit.Candidate{}, err
	}

	parsed, err := parseSuggestion(text)
	if err != nil {
		return outfit.Candidate{}, err
	}

	resolved := ResolveItems(parsed.SelectedItems, items)
	if len(resolved) < minResolvedItems {
		return outfit.Candidate{}, fmt.Errorf("%w: got %d", ErrTooFewMatches, len(resolved))
	}
	if len(resolved) > maxOutfitItems {
		resolved = resolved[:maxOutfitItems]
	}

	confidence := int(parsed.Confidence)
	if confidence < minModelConfidence {
		confidence = minModelConfidence
	}
	if confidence > maxModelConfidence {
		confidence = maxModelConfidence
	}

	reasoning := strings.TrimSpace(parsed.Reasoning)
	if reasoning == "" {
		reasoning = weatherSummary(obs)
	}

	label := occasion
	if label == "" {
		label = outfit.OccasionFor(resolved[0].Formality)
	}

	return outfit.Candidate{
		ID:         uuid.NewString(),
		Items:      resolved,
		Occasion:   label,
		Weather:    obs,
		Confidence: confidence,
		Reasoning:  reasoning,
		CreatedAt:  nowFunc(),
	}, nil
}

// buildPrompt enumerates the available items by exact display name so the
// model can answer with names we can resolve literally.
func buildPrompt(available []catalog.Item, obs weather.Observation, occasion string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are a personal stylist. Pick one outfit for a %s occasion.\n\n", orDefault(occasion, "casual"))
	fmt.Fprintf(&b, "Weather: %d°C, %s, humidity %d%%, wind %.0f km/h (%s).\n\n",
		obs.Temperature, obs.Condition, obs.Humidity, obs.WindSpeed, obs.Description)

	b.WriteString("Wardrobe (use EXACT item names):\n")
	for _, item := range available {
		fmt.Fprintf(&b, "- %s (%s/%s, %s, %s, %s)\n",
			item.Name, item.Category, item.Subcategory, item.Color, item.Material, item.Formality)
	}

	b.WriteString("\nReturn ONLY valid JSON, no markdown:\n")
	b.WriteString(`{"selectedItems": ["exact item name", ...], "confidence": 0-100, "reasoning": "one sentence"}`)

	return b.String()
}

// parseSuggestion decodes the model answer. If the body is not pure JSON,
// the first {...} substring is extracted and parsed before giving up.
func parseSuggestion(text string) (suggestion, error) {
	var s suggestion
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return s, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return s, fmt.Errorf("stylist: no JSON object in model response")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &s); err != nil {
		return s, fmt.Errorf("stylist: malformed model JSON: %w", err)
	}
	return s, nil
}

func weatherSummary(obs weather.Observation) string {
	return fmt.Sprintf("A solid match for %d°C and %s conditions.", obs.Temperature, obs.Condition)
}

func availableOnly(items []catalog.Item) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, item := range items {
		if item.Available {
			out = append(out, item)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

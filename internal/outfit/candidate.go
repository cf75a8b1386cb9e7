// Package outfit holds the outfit candidate model and the combinatorial
// ranker that scores wardrobe combinations against the weather.
package outfit

import (
	"time"

	"github.com/google/uuid"

	"github.com/wearly/outfit-engine/internal/catalog"
	"github.com/wearly/outfit-engine/internal/weather"
)

// Preferences captures the user's styling preferences relevant to ranking.
type Preferences struct {
	FavoriteColors []string `json:"favoriteColors,omitempty"`
}

// Candidate is a ranked outfit suggestion. It is immutable after creation
// except for ScheduledFor, which the planner sets when the outfit is
// assigned to a date.
type Candidate struct {
	ID           string              `json:"id"`
	Items        []catalog.Item      `json:"items"`
	Occasion     string              `json:"occasion"`
	Weather      weather.Observation `json:"weather"`
	Confidence   int                 `json:"confidence"`
	Reasoning    string              `json:"reasoning"`
	ScheduledFor string              `json:"scheduledFor,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func newCandidate(items []catalog.Item, occasion string, obs weather.Observation, confidence int, reasoning string) Candidate {
	return Candidate{
		ID:         uuid.NewString(),
		Items:      items,
		Occasion:   occasion,
		Weather:    obs,
		Confidence: confidence,
		Reasoning:  reasoning,
		CreatedAt:  time.Now(),
	}
}

// OccasionFor maps a formality level to the occasion label shown with a
// candidate.
func OccasionFor(formality string) string {
	switch formality {
	case catalog.FormalityFormal:
		return "Business/Formal Event"
	case catalog.FormalitySemiFormal:
		return "Dinner/Social Event"
	case catalog.FormalitySmartCasual:
		return "Work/Meeting"
	default:
		return "Daily/Casual"
	}
}

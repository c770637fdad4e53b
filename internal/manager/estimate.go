package manager

import (
	"time"

	"fileforge/internal/quality"
)

// Base wall-clock cost per category, scaled by the tier's cost multiplier.
// These are planning figures for the caller, not execution deadlines.
var categoryBaseDuration = map[string]time.Duration{
	"document": 30 * time.Second,
	"image":    10 * time.Second,
	"audio":    20 * time.Second,
	"video":    60 * time.Second,
	"archive":  20 * time.Second,
	"data":     10 * time.Second,
	"model":    40 * time.Second,
}

const defaultBaseDuration = 30 * time.Second

// EstimateCompletion projects when a conversion submitted now should finish.
// Cross-category pairs never reach this point, so the input's category alone
// sets the base.
func (m *Manager) EstimateCompletion(inputFormat, outputFormat string, profile quality.Profile) time.Time {
	base := defaultBaseDuration
	if category, ok := m.registry.CategoryFor(inputFormat); ok {
		if d, found := categoryBaseDuration[category.ID]; found {
			base = d
		}
	}
	scaled := time.Duration(float64(base) * profile.CostMultiplier)
	return time.Now().UTC().Add(scaled)
}

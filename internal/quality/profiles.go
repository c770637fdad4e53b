package quality

import (
	"strings"

	"fileforge/internal/services"
)

// Priority orders speed against fidelity for a tier.
type Priority string

const (
	PrioritySpeed    Priority = "speed"
	PriorityBalanced Priority = "balanced"
	PriorityQuality  Priority = "quality"
)

// Profile is the resolved settings bundle handed to converters.
type Profile struct {
	Tier             string
	Priority         Priority
	CompressionLevel int
	QualityPercent   int
	ProcessingDepth  int
	CostMultiplier   float64
	// FullAuditDetail records every progress checkpoint in the audit log,
	// not just lifecycle transitions.
	FullAuditDetail bool
}

// The four built-in tiers, ascending cost. QualityPercent and CostMultiplier
// increase strictly from economy to enterprise.
var tiers = []Profile{
	{Tier: "economy", Priority: PrioritySpeed, CompressionLevel: 9, QualityPercent: 60, ProcessingDepth: 1, CostMultiplier: 1.0},
	{Tier: "standard", Priority: PriorityBalanced, CompressionLevel: 6, QualityPercent: 75, ProcessingDepth: 2, CostMultiplier: 1.5},
	{Tier: "premium", Priority: PriorityQuality, CompressionLevel: 3, QualityPercent: 90, ProcessingDepth: 3, CostMultiplier: 2.5},
	{Tier: "enterprise", Priority: PriorityQuality, CompressionLevel: 1, QualityPercent: 100, ProcessingDepth: 4, CostMultiplier: 4.0, FullAuditDetail: true},
}

// Resolve maps a tier name to its profile.
func Resolve(tier string) (Profile, error) {
	name := strings.ToLower(strings.TrimSpace(tier))
	for _, profile := range tiers {
		if profile.Tier == name {
			return profile, nil
		}
	}
	return Profile{}, services.Wrap(services.ErrUnknownTier, "quality", "resolve", "no tier named "+tier, nil)
}

// Profiles lists the built-in tiers in ascending cost order.
func Profiles() []Profile {
	out := make([]Profile, len(tiers))
	copy(out, tiers)
	return out
}

// DefaultTier is used when a submission names no tier.
const DefaultTier = "standard"

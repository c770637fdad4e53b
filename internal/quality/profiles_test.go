package quality_test

import (
	"errors"
	"testing"

	"fileforge/internal/quality"
	"fileforge/internal/services"
)

func TestResolveKnownTiers(t *testing.T) {
	for _, tier := range []string{"economy", "standard", "premium", "enterprise"} {
		profile, err := quality.Resolve(tier)
		if err != nil {
			t.Fatalf("Resolve(%q) returned error: %v", tier, err)
		}
		if profile.Tier != tier {
			t.Fatalf("Resolve(%q).Tier = %q", tier, profile.Tier)
		}
	}
}

func TestResolveNormalizesCase(t *testing.T) {
	profile, err := quality.Resolve(" Premium ")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if profile.Tier != "premium" {
		t.Fatalf("Tier = %q, want premium", profile.Tier)
	}
}

func TestResolveUnknownTier(t *testing.T) {
	_, err := quality.Resolve("platinum")
	if !errors.Is(err, services.ErrUnknownTier) {
		t.Fatalf("expected unknown tier, got %v", err)
	}
}

func TestTiersStrictlyIncreasing(t *testing.T) {
	profiles := quality.Profiles()
	if len(profiles) != 4 {
		t.Fatalf("expected 4 tiers, got %d", len(profiles))
	}
	for i := 1; i < len(profiles); i++ {
		prev, curr := profiles[i-1], profiles[i]
		if curr.QualityPercent <= prev.QualityPercent {
			t.Fatalf("quality percent not increasing: %s=%d, %s=%d", prev.Tier, prev.QualityPercent, curr.Tier, curr.QualityPercent)
		}
		if curr.CostMultiplier <= prev.CostMultiplier {
			t.Fatalf("cost multiplier not increasing: %s=%v, %s=%v", prev.Tier, prev.CostMultiplier, curr.Tier, curr.CostMultiplier)
		}
	}
}

func TestOnlyEnterpriseCarriesFullAuditDetail(t *testing.T) {
	for _, profile := range quality.Profiles() {
		want := profile.Tier == "enterprise"
		if profile.FullAuditDetail != want {
			t.Fatalf("tier %s FullAuditDetail = %v, want %v", profile.Tier, profile.FullAuditDetail, want)
		}
	}
}

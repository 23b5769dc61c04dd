package booking

import "testing"

func TestMinutesToDeduct_SixtyMinuteSession(t *testing.T) {
	tests := []struct {
		tier     RateTier
		expected int
	}{
		{TierStandard, 60},
		{TierAdvanced, 96},
		{TierExpert, 144},
		{TierMaster, 192},
	}

	for _, tt := range tests {
		got := MinutesToDeduct(60, tt.tier)
		if got != tt.expected {
			t.Errorf("MinutesToDeduct(60, %s) = %d, want %d", tt.tier, got, tt.expected)
		}
	}
}

func TestMinutesToDeduct_CeilingRule(t *testing.T) {
	// 30 * 1.6 = 48 exact, 45 * 1.6 = 72 exact, 25 * 2.4 = 60 exact,
	// 31 * 1.6 = 49.6 -> 50
	tests := []struct {
		duration int
		tier     RateTier
		expected int
	}{
		{30, TierAdvanced, 48},
		{31, TierAdvanced, 50},
		{45, TierAdvanced, 72},
		{25, TierExpert, 60},
		{30, TierMaster, 96},
		{1, TierMaster, 4},
	}

	for _, tt := range tests {
		got := MinutesToDeduct(tt.duration, tt.tier)
		if got != tt.expected {
			t.Errorf("MinutesToDeduct(%d, %s) = %d, want %d", tt.duration, tt.tier, got, tt.expected)
		}
	}
}

func TestMinutesToDeduct_NonNegative(t *testing.T) {
	if got := MinutesToDeduct(0, TierMaster); got != 0 {
		t.Errorf("zero duration should deduct 0 minutes, got %d", got)
	}
	if got := MinutesToDeduct(-30, TierStandard); got != 0 {
		t.Errorf("negative duration should deduct 0 minutes, got %d", got)
	}
}

func TestMinutesToDeduct_UnknownTierDefaultsToStandard(t *testing.T) {
	if got := MinutesToDeduct(60, RateTier("")); got != 60 {
		t.Errorf("empty tier should use standard multiplier, got %d", got)
	}
	if got := MinutesToDeduct(60, RateTier("platinum")); got != 60 {
		t.Errorf("unknown tier should use standard multiplier, got %d", got)
	}
}

func TestTierInfo_UnknownTier(t *testing.T) {
	info := TierInfo(RateTier("unheard_of"))
	if info != tiers[TierStandard] {
		t.Errorf("unknown tier should resolve to standard, got %+v", info)
	}
}

func TestTierInfo_Catalog(t *testing.T) {
	tests := []struct {
		tier       RateTier
		hourlyRate int
		multiplier float64
	}{
		{TierStandard, 50, 1.0},
		{TierAdvanced, 80, 1.6},
		{TierExpert, 120, 2.4},
		{TierMaster, 160, 3.2},
	}

	for _, tt := range tests {
		info := TierInfo(tt.tier)
		if info.HourlyRate != tt.hourlyRate {
			t.Errorf("%s hourly rate = %d, want %d", tt.tier, info.HourlyRate, tt.hourlyRate)
		}
		if info.Multiplier != tt.multiplier {
			t.Errorf("%s multiplier = %v, want %v", tt.tier, info.Multiplier, tt.multiplier)
		}
		if info.PlatformFee+info.SpecialistPayout != info.HourlyRate {
			t.Errorf("%s fee split does not add up: %d + %d != %d", tt.tier, info.PlatformFee, info.SpecialistPayout, info.HourlyRate)
		}
	}
}

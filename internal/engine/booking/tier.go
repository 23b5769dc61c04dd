package booking

import "math"

type RateTier string

const (
	TierStandard RateTier = "standard"
	TierAdvanced RateTier = "advanced"
	TierExpert   RateTier = "expert"
	TierMaster   RateTier = "master"
)

// Tier carries the billing profile of a rate tier. Rates are whole currency
// units per hour; the multiplier converts session wall-clock minutes into
// wellness minutes charged against the company plan.
type Tier struct {
	HourlyRate       int     `json:"hourly_rate"`
	PlatformFee      int     `json:"platform_fee"`
	SpecialistPayout int     `json:"specialist_payout"`
	Multiplier       float64 `json:"multiplier"`
}

var tiers = map[RateTier]Tier{
	TierStandard: {HourlyRate: 50, PlatformFee: 15, SpecialistPayout: 35, Multiplier: 1.0},
	TierAdvanced: {HourlyRate: 80, PlatformFee: 24, SpecialistPayout: 56, Multiplier: 1.6},
	TierExpert:   {HourlyRate: 120, PlatformFee: 36, SpecialistPayout: 84, Multiplier: 2.4},
	TierMaster:   {HourlyRate: 160, PlatformFee: 48, SpecialistPayout: 112, Multiplier: 3.2},
}

// TierInfo resolves a tier to its billing profile. Unknown or empty tiers
// resolve to standard rather than failing; specialists created before tiers
// existed have no rate_tier set.
func TierInfo(tier RateTier) Tier {
	if t, ok := tiers[tier]; ok {
		return t
	}
	return tiers[TierStandard]
}

// MinutesToDeduct converts a session duration into wellness minutes:
// ceil(duration * multiplier). A 60-minute session with a master-tier
// specialist charges 192 minutes.
func MinutesToDeduct(durationMinutes int, tier RateTier) int {
	if durationMinutes <= 0 {
		return 0
	}
	return int(math.Ceil(float64(durationMinutes) * TierInfo(tier).Multiplier))
}

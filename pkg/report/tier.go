package report

// Tier is a score bucket driving color coding.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// TierRule assigns a tier to scores at or above Min.
type TierRule struct {
	Tier Tier
	Min  float64
}

// TierRules are evaluated in order; the first rule whose Min is reached wins.
//
//nolint:gochecknoglobals // Scoring configuration constants
var TierRules = []TierRule{
	{Tier: TierHigh, Min: 80},
	{Tier: TierMedium, Min: 50},
	{Tier: TierLow, Min: 0},
}

// TierFor maps a score to its tier. Scores are clamped first, so every input has a tier.
func TierFor(score float64) (tier Tier) {
	clamped := ClampPercent(score)
	for _, rule := range TierRules {
		if clamped >= rule.Min {
			tier = rule.Tier
			return tier
		}
	}
	tier = TierLow
	return tier
}

// TierColors are the fill colors for each tier.
type TierColors struct {
	High   string `json:"high"`
	Medium string `json:"medium"`
	Low    string `json:"low"`
}

// DefaultTierColors returns the success/warning/danger colors.
func DefaultTierColors() (colors TierColors) {
	colors = TierColors{
		High:   "#2ec4b6",
		Medium: "#ff9f00",
		Low:    "#e71d36",
	}
	return colors
}

// For returns the color of a tier.
func (c TierColors) For(tier Tier) (color string) {
	switch tier {
	case TierHigh:
		color = c.High
	case TierMedium:
		color = c.Medium
	default:
		color = c.Low
	}
	return color
}

// WithDefaults fills unset colors from DefaultTierColors.
func (c TierColors) WithDefaults() (colors TierColors) {
	colors = c
	defaults := DefaultTierColors()
	if colors.High == "" {
		colors.High = defaults.High
	}
	if colors.Medium == "" {
		colors.Medium = defaults.Medium
	}
	if colors.Low == "" {
		colors.Low = defaults.Low
	}
	return colors
}

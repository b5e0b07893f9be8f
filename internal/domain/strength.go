package domain

import (
	zxcvbn "github.com/ccojocar/zxcvbn-go"
)

// MaxScore is the highest value Score can return.
const MaxScore = 6

// Tier is the three-level strength label.
type Tier string

const (
	TierWeak   Tier = "Weak"
	TierMedium Tier = "Medium"
	TierStrong Tier = "Strong"
)

// Rating is the full strength report derived from a config.
type Rating struct {
	Score   int    `json:"score"`
	Tier    Tier   `json:"tier"`
	Color   string `json:"color"`
	Percent int    `json:"percent"`
}

// Score maps a config to [0, MaxScore]: one point per selected category,
// plus two for length >= 12 or one for length >= 8.
func Score(cfg GenerationConfig) int {
	score := 0
	for _, c := range AllCategories {
		if cfg.Categories.Has(c) {
			score++
		}
	}
	switch {
	case cfg.Length >= 12:
		score += 2
	case cfg.Length >= 8:
		score++
	}
	return score
}

// TierFor buckets a score: <=2 Weak, 3-4 Medium, >=5 Strong.
func TierFor(score int) Tier {
	switch {
	case score <= 2:
		return TierWeak
	case score <= 4:
		return TierMedium
	default:
		return TierStrong
	}
}

func (t Tier) Color() string {
	switch t {
	case TierWeak:
		return "red"
	case TierMedium:
		return "yellow"
	default:
		return "green"
	}
}

// Rate scores cfg and derives the tier, color and proportional bar width.
func Rate(cfg GenerationConfig) Rating {
	score := Score(cfg)
	tier := TierFor(score)
	return Rating{
		Score:   score,
		Tier:    tier,
		Color:   tier.Color(),
		Percent: score * 100 / MaxScore,
	}
}

// MissingCategories returns the categories not selected in cfg, in canonical order.
func MissingCategories(cfg GenerationConfig) []Category {
	var missing []Category
	for _, c := range AllCategories {
		if !cfg.Categories.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Estimate is a zxcvbn second opinion on a concrete password.
// It is informational only and never changes the Rating.
type Estimate struct {
	Score       int     `json:"score"`
	EntropyBits float64 `json:"entropy_bits"`
	CrackTime   string  `json:"crack_time"`
}

// EstimatePassword runs zxcvbn on password.
func EstimatePassword(password string) Estimate {
	if password == "" {
		return Estimate{}
	}
	res := zxcvbn.PasswordStrength(password, nil)
	return Estimate{
		Score:       res.Score,
		EntropyBits: res.Entropy,
		CrackTime:   res.CrackTimeDisplay,
	}
}

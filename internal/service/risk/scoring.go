package risk

import "RiskPulse/internal/domain/models"

// BaseScore grades a risk value by decile tier, symmetric around the
// midpoint: the closer to either historical extreme, the higher the score.
func BaseScore(risk float64) float64 {
	switch {
	case risk <= 0.15 || risk >= 0.85:
		return 100
	case risk <= 0.25 || risk >= 0.75:
		return 80
	case risk <= 0.35 || risk >= 0.65:
		return 60
	default:
		return 50
	}
}

// SignalTypeOf derives the trade direction from raw risk.
func SignalTypeOf(risk float64) models.SignalType {
	switch {
	case risk <= 0.35:
		return models.SignalLong
	case risk >= 0.65:
		return models.SignalShort
	default:
		return models.SignalNeutral
	}
}

// StrengthOf buckets a rarity-weighted total score.
func StrengthOf(totalScore float64) models.SignalStrength {
	switch {
	case totalScore >= 150:
		return models.StrengthStrongest
	case totalScore >= 120:
		return models.StrengthStrong
	case totalScore >= 90:
		return models.StrengthModerate
	default:
		return models.StrengthWeak
	}
}

// Score combines the base score with the band's rarity coefficient.
// Deterministic pure function of (risk, coefficient).
func Score(symbol string, risk, coefficient float64) models.ScoreResult {
	base := BaseScore(risk)
	total := base * coefficient
	return models.ScoreResult{
		Symbol:         symbol,
		BaseScore:      base,
		Coefficient:    coefficient,
		TotalScore:     total,
		SignalType:     SignalTypeOf(risk),
		SignalStrength: StrengthOf(total),
	}
}

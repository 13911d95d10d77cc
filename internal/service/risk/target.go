package risk

import "RiskPulse/internal/domain/models"

// FindBetterTarget looks one decile band away in the direction implied by the
// signal (LONG down, SHORT up, NEUTRAL whichever adjacent band is rarer) and
// suggests it only when it is strictly rarer than the current band. The single
// conservative step is deliberate: never a jump to the globally rarest band.
// Returns nil when no neighbor qualifies (grid extreme, tie, or not rarer).
func FindBetterTarget(grid *Grid, currentBand int, sig models.SignalType, d models.BandTimeDistribution, currentScore float64) *models.TargetSuggestion {
	candidate := -1
	switch sig {
	case models.SignalLong:
		candidate = currentBand - 1
	case models.SignalShort:
		candidate = currentBand + 1
	case models.SignalNeutral:
		candidate = rarerNeighbor(currentBand, d)
	}
	if candidate < 0 || candidate >= models.BandCount {
		return nil
	}
	if d.Days[candidate] >= d.Days[currentBand] {
		return nil
	}

	targetRisk := BandMidpoint(candidate)
	coef := d.Coefficients[candidate]
	score := Score(d.Symbol, targetRisk, coef)
	return &models.TargetSuggestion{
		TargetPrice:       grid.PriceAtRisk(targetRisk),
		TargetRisk:        targetRisk,
		TargetBand:        candidate,
		TargetDays:        d.Days[candidate],
		TargetCoefficient: coef,
		TargetScore:       score.TotalScore,
		Improvement:       score.TotalScore - currentScore,
	}
}

// rarerNeighbor picks the adjacent band with fewer days for a NEUTRAL signal.
// A tie between the two neighbors yields no candidate.
func rarerNeighbor(band int, d models.BandTimeDistribution) int {
	lower, upper := band-1, band+1
	switch {
	case lower < 0 && upper >= models.BandCount:
		return -1
	case lower < 0:
		return upper
	case upper >= models.BandCount:
		return lower
	case d.Days[lower] < d.Days[upper]:
		return lower
	case d.Days[upper] < d.Days[lower]:
		return upper
	default:
		return -1
	}
}

package risk

import "RiskPulse/internal/domain/models"

// PhaseOf maps a BTC-denominated risk to its named market phase. Low pair
// risk means the asset is historically cheap against Bitcoin (Bitcoin season);
// high pair risk means it is historically expensive (altcoin season).
func PhaseOf(pairRisk float64) models.MarketPhase {
	switch {
	case pairRisk <= 0.25:
		return models.PhaseStrongBitcoinSeason
	case pairRisk <= 0.35:
		return models.PhaseBitcoinSeason
	case pairRisk <= 0.50:
		return models.PhaseEarlyTransition
	case pairRisk <= 0.65:
		return models.PhaseLateTransition
	case pairRisk <= 0.75:
		return models.PhaseAltcoinSeason
	case pairRisk <= 0.85:
		return models.PhaseStrongAltcoinSeason
	default:
		return models.PhasePeakAltcoinSeason
	}
}

// Insight merges the fiat signal with the pair risk into one of four quadrant
// narratives, with a neutral fallback when neither side is at an extreme.
func Insight(sig models.SignalType, pairRisk float64) string {
	pairWeak := pairRisk <= 0.35   // cheap vs BTC, Bitcoin dominance
	pairStrong := pairRisk >= 0.65 // expensive vs BTC, altcoin strength

	switch {
	case sig == models.SignalLong && pairWeak:
		return "Asset is oversold in fiat while Bitcoin dominates; accumulating during dominance positions for the next altcoin rotation."
	case sig == models.SignalLong && pairStrong:
		return "Asset is oversold in fiat yet strong against Bitcoin; relative strength suggests it may lead once the market turns."
	case sig == models.SignalShort && pairWeak:
		return "Asset is overbought in fiat but weak against Bitcoin; it is underperforming the market leader and gains may not hold."
	case sig == models.SignalShort && pairStrong:
		return "Asset is overbought in fiat and stretched against Bitcoin; broad euphoria favors taking profit."
	default:
		return "No extreme alignment between the fiat signal and the Bitcoin-relative phase; no strategic action indicated."
	}
}

// AnalyzePhase runs the pair pipeline against a BTC-denominated grid and
// combines it with the fiat signal. Callers must not pass the base symbol's
// own grid here.
func AnalyzePhase(pairGrid *Grid, priceInBTC float64, fiatSignal models.SignalType) models.PhaseResult {
	pairRisk := pairGrid.RiskAtPrice(priceInBTC)
	return models.PhaseResult{
		PairRisk:    pairRisk,
		PairBand:    BandOf(pairRisk),
		MarketPhase: PhaseOf(pairRisk),
		Insight:     Insight(fiatSignal, pairRisk),
	}
}

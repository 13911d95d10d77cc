package risk

import (
	"strings"
	"testing"

	"RiskPulse/internal/domain/models"
)

func TestPhaseOfCutoffs(t *testing.T) {
	cases := []struct {
		risk float64
		want models.MarketPhase
	}{
		{0.10, models.PhaseStrongBitcoinSeason},
		{0.25, models.PhaseStrongBitcoinSeason},
		{0.30, models.PhaseBitcoinSeason},
		{0.35, models.PhaseBitcoinSeason},
		{0.45, models.PhaseEarlyTransition},
		{0.50, models.PhaseEarlyTransition},
		{0.60, models.PhaseLateTransition},
		{0.65, models.PhaseLateTransition},
		{0.70, models.PhaseAltcoinSeason},
		{0.75, models.PhaseAltcoinSeason},
		{0.80, models.PhaseStrongAltcoinSeason},
		{0.85, models.PhaseStrongAltcoinSeason},
		{0.90, models.PhasePeakAltcoinSeason},
		{1.00, models.PhasePeakAltcoinSeason},
	}
	for _, c := range cases {
		if got := PhaseOf(c.risk); got != c.want {
			t.Fatalf("PhaseOf(%v) = %s, want %s", c.risk, got, c.want)
		}
	}
}

func TestInsightQuadrants(t *testing.T) {
	if !strings.Contains(Insight(models.SignalLong, 0.2), "dominance") {
		t.Fatalf("both-oversold quadrant should mention dominance accumulation")
	}
	if !strings.Contains(Insight(models.SignalLong, 0.8), "relative strength") {
		t.Fatalf("oversold/pair-strong quadrant should mention relative strength")
	}
	if !strings.Contains(Insight(models.SignalShort, 0.2), "underperforming") {
		t.Fatalf("overbought/pair-weak quadrant should mention underperformance")
	}
	if !strings.Contains(Insight(models.SignalShort, 0.8), "profit") {
		t.Fatalf("both-overbought quadrant should mention profit taking")
	}
	if !strings.Contains(Insight(models.SignalNeutral, 0.5), "No extreme") {
		t.Fatalf("fallback narrative expected for neutral middle")
	}
}

func TestAnalyzePhase(t *testing.T) {
	g, err := NewGrid("ETH", models.DenomBTC, []models.GridPoint{
		{Symbol: "ETH", Denomination: models.DenomBTC, Price: 0.02, Risk: 0.0},
		{Symbol: "ETH", Denomination: models.DenomBTC, Price: 0.05, Risk: 0.5},
		{Symbol: "ETH", Denomination: models.DenomBTC, Price: 0.08, Risk: 1.0},
	})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	res := AnalyzePhase(g, 0.02, models.SignalLong)
	if res.PairRisk != 0.0 {
		t.Fatalf("pair risk = %v, want 0", res.PairRisk)
	}
	if res.PairBand != 0 {
		t.Fatalf("pair band = %d, want 0", res.PairBand)
	}
	if res.MarketPhase != models.PhaseStrongBitcoinSeason {
		t.Fatalf("phase = %s", res.MarketPhase)
	}
	if res.Insight == "" {
		t.Fatalf("insight should not be empty")
	}
}

package risk

import (
	"testing"

	"RiskPulse/internal/domain/models"
)

func targetFixture(t *testing.T) *Grid {
	t.Helper()
	return testGrid(t, pt(100, 0.0), pt(200, 0.5), pt(300, 1.0))
}

func TestTargetNotRarerReturnsAbsent(t *testing.T) {
	g := targetFixture(t)
	d := models.NewBandTimeDistribution("ETH")
	d.Days[3] = 50 // current band 0.3-0.4
	d.Days[2] = 80 // neighbor more common
	d.TotalDays = 130
	d = RecomputeCoefficients(d)

	if got := FindBetterTarget(g, 3, models.SignalLong, d, 96); got != nil {
		t.Fatalf("expected absent for non-rarer neighbor, got %+v", got)
	}
}

func TestTargetRarerNeighborSuggested(t *testing.T) {
	g := targetFixture(t)
	d := models.NewBandTimeDistribution("ETH")
	d.Days[3] = 50
	d.Days[2] = 30
	d.TotalDays = 80
	d = RecomputeCoefficients(d)

	got := FindBetterTarget(g, 3, models.SignalLong, d, 96)
	if got == nil {
		t.Fatalf("expected a suggestion for rarer neighbor")
	}
	if got.TargetBand != 2 {
		t.Fatalf("target band = %d, want 2", got.TargetBand)
	}
	if got.TargetRisk != 0.25 {
		t.Fatalf("target risk = %v, want band midpoint 0.25", got.TargetRisk)
	}
	if got.TargetDays >= d.Days[3] {
		t.Fatalf("target days %d not strictly rarer than current %d", got.TargetDays, d.Days[3])
	}
	// price for risk 0.25 on the fixture grid
	if got.TargetPrice != 150 {
		t.Fatalf("target price = %v, want 150", got.TargetPrice)
	}
	if got.TargetScore != BaseScore(0.25)*got.TargetCoefficient {
		t.Fatalf("target score = %v", got.TargetScore)
	}
	if got.Improvement != got.TargetScore-96 {
		t.Fatalf("improvement = %v", got.Improvement)
	}
}

func TestTargetNeverMoreThanOneBandAway(t *testing.T) {
	g := targetFixture(t)
	d := models.NewBandTimeDistribution("ETH")
	for i := range d.Days {
		d.Days[i] = 10 * (i + 1)
	}
	d.Days[0] = 1 // globally rarest, far away
	d.TotalDays = 0
	for _, n := range d.Days {
		d.TotalDays += n
	}
	d = RecomputeCoefficients(d)

	for band := 0; band < models.BandCount; band++ {
		for _, sig := range []models.SignalType{models.SignalLong, models.SignalShort, models.SignalNeutral} {
			got := FindBetterTarget(g, band, sig, d, 50)
			if got == nil {
				continue
			}
			if diff := got.TargetBand - band; diff < -1 || diff > 1 || diff == 0 {
				t.Fatalf("band %d sig %s: target band %d is not one step away", band, sig, got.TargetBand)
			}
			if got.TargetDays >= d.Days[band] {
				t.Fatalf("band %d sig %s: target not strictly rarer", band, sig)
			}
		}
	}
}

func TestTargetAbsentAtExtremes(t *testing.T) {
	g := targetFixture(t)
	d := models.NewBandTimeDistribution("ETH")
	d.Days[0] = 40
	d.Days[9] = 40
	d.TotalDays = 80
	d = RecomputeCoefficients(d)

	if got := FindBetterTarget(g, 0, models.SignalLong, d, 100); got != nil {
		t.Fatalf("no band below 0.0-0.1, got %+v", got)
	}
	if got := FindBetterTarget(g, 9, models.SignalShort, d, 100); got != nil {
		t.Fatalf("no band above 0.9-1.0, got %+v", got)
	}
}

func TestTargetNeutralPicksRarerSideTieAbsent(t *testing.T) {
	g := targetFixture(t)
	d := models.NewBandTimeDistribution("ETH")
	d.Days[4] = 20
	d.Days[5] = 60
	d.Days[6] = 40
	d.TotalDays = 120
	d = RecomputeCoefficients(d)

	got := FindBetterTarget(g, 5, models.SignalNeutral, d, 50)
	if got == nil || got.TargetBand != 4 {
		t.Fatalf("neutral should pick the rarer lower neighbor, got %+v", got)
	}

	// tie between neighbors -> absent
	d.Days[4] = 40
	d.TotalDays = 140
	d = RecomputeCoefficients(d)
	if got := FindBetterTarget(g, 5, models.SignalNeutral, d, 50); got != nil {
		t.Fatalf("tie should yield no suggestion, got %+v", got)
	}
}

package risk

import (
	"testing"

	"RiskPulse/internal/domain/models"
)

func TestBaseScoreTiers(t *testing.T) {
	cases := []struct {
		risk float64
		want float64
	}{
		{0.00, 100}, {0.10, 100}, {0.15, 100}, {0.85, 100}, {1.00, 100},
		{0.16, 80}, {0.25, 80}, {0.75, 80}, {0.84, 80},
		{0.26, 60}, {0.35, 60}, {0.65, 60}, {0.74, 60},
		{0.36, 50}, {0.50, 50}, {0.64, 50},
	}
	for _, c := range cases {
		if got := BaseScore(c.risk); got != c.want {
			t.Fatalf("BaseScore(%v) = %v, want %v", c.risk, got, c.want)
		}
	}
}

func TestScoreLowRiskRareBand(t *testing.T) {
	res := Score("BTC", 0.10, 1.6)
	if res.BaseScore != 100 {
		t.Fatalf("base = %v, want 100", res.BaseScore)
	}
	if res.TotalScore != 160 {
		t.Fatalf("total = %v, want 160", res.TotalScore)
	}
	if res.SignalType != models.SignalLong {
		t.Fatalf("type = %s, want LONG", res.SignalType)
	}
	if res.SignalStrength != models.StrengthStrongest {
		t.Fatalf("strength = %s, want STRONGEST", res.SignalStrength)
	}
}

func TestSignalTypeThresholds(t *testing.T) {
	if SignalTypeOf(0.35) != models.SignalLong {
		t.Fatalf("0.35 should be LONG")
	}
	if SignalTypeOf(0.65) != models.SignalShort {
		t.Fatalf("0.65 should be SHORT")
	}
	if SignalTypeOf(0.50) != models.SignalNeutral {
		t.Fatalf("0.50 should be NEUTRAL")
	}
}

func TestStrengthThresholds(t *testing.T) {
	cases := []struct {
		total float64
		want  models.SignalStrength
	}{
		{160, models.StrengthStrongest},
		{150, models.StrengthStrongest},
		{149.999, models.StrengthStrong},
		{120, models.StrengthStrong},
		{119, models.StrengthModerate},
		{90, models.StrengthModerate},
		{89.9, models.StrengthWeak},
		{50, models.StrengthWeak},
	}
	for _, c := range cases {
		if got := StrengthOf(c.total); got != c.want {
			t.Fatalf("StrengthOf(%v) = %s, want %s", c.total, got, c.want)
		}
	}
}

func TestTotalScoreMonotonicInCoefficient(t *testing.T) {
	prev := -1.0
	for coef := 1.0; coef <= 1.6; coef += 0.05 {
		res := Score("BTC", 0.2, coef)
		if res.TotalScore <= prev {
			t.Fatalf("total score not increasing at coef %v", coef)
		}
		prev = res.TotalScore
	}
}

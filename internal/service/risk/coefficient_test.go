package risk

import (
	"testing"

	"RiskPulse/internal/domain/models"
)

func TestCoefficientsTwoDistinctCounts(t *testing.T) {
	d := models.NewBandTimeDistribution("ETH")
	d.Days = [models.BandCount]int{10, 10, 10, 10, 10, 100, 10, 10, 10, 10}
	d.TotalDays = 190

	out := RecomputeCoefficients(d)
	for i, c := range out.Coefficients {
		want := 1.6
		if i == 5 {
			want = 1.0
		}
		if c != want {
			t.Fatalf("coefficient[%d] = %v, want %v", i, c, want)
		}
	}
}

func TestCoefficientsNoVariation(t *testing.T) {
	d := models.NewBandTimeDistribution("ETH")
	for i := range d.Days {
		d.Days[i] = 7
	}
	d.TotalDays = 70

	out := RecomputeCoefficients(d)
	for i, c := range out.Coefficients {
		if c != 1.0 {
			t.Fatalf("coefficient[%d] = %v, want 1.0 when minDays == maxDays", i, c)
		}
	}
}

func TestCoefficientsLinearBetweenExtremes(t *testing.T) {
	d := models.NewBandTimeDistribution("ETH")
	d.Days[0] = 10  // rarest -> 1.6
	d.Days[1] = 55  // halfway -> 1.3
	d.Days[2] = 100 // most common -> 1.0
	d.TotalDays = 165

	out := RecomputeCoefficients(d)
	if out.Coefficients[0] != 1.6 {
		t.Fatalf("rarest band coefficient = %v, want 1.6", out.Coefficients[0])
	}
	if out.Coefficients[1] != 1.3 {
		t.Fatalf("midway band coefficient = %v, want 1.3", out.Coefficients[1])
	}
	if out.Coefficients[2] != 1.0 {
		t.Fatalf("most common band coefficient = %v, want 1.0", out.Coefficients[2])
	}
}

func TestCoefficientsZeroDayBandsStayNeutral(t *testing.T) {
	d := models.NewBandTimeDistribution("ETH")
	d.Days[3] = 20
	d.Days[4] = 80
	d.TotalDays = 100

	out := RecomputeCoefficients(d)
	for i, c := range out.Coefficients {
		if i == 3 || i == 4 {
			continue
		}
		if c != 1.0 {
			t.Fatalf("empty band %d coefficient = %v, want 1.0", i, c)
		}
	}
	if out.Coefficients[3] != 1.6 || out.Coefficients[4] != 1.0 {
		t.Fatalf("populated coefficients = %v / %v", out.Coefficients[3], out.Coefficients[4])
	}
}

func TestCoefficientsAlwaysInBounds(t *testing.T) {
	d := models.NewBandTimeDistribution("ETH")
	d.Days = [models.BandCount]int{1, 3, 7, 13, 29, 51, 97, 151, 233, 365}
	for _, n := range d.Days {
		d.TotalDays += n
	}
	out := RecomputeCoefficients(d)
	for i, c := range out.Coefficients {
		if c < 1.0 || c > 1.6 {
			t.Fatalf("coefficient[%d] = %v outside [1.0, 1.6]", i, c)
		}
	}
}

func TestCoefficientsDoNotMutateInput(t *testing.T) {
	d := models.NewBandTimeDistribution("ETH")
	d.Days[0] = 5
	d.Days[1] = 50
	d.TotalDays = 55

	_ = RecomputeCoefficients(d)
	if d.Coefficients[0] != 1.0 {
		t.Fatalf("input distribution was mutated")
	}
}

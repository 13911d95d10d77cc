package risk

import (
	"math"
	"testing"

	"RiskPulse/internal/domain/models"
)

func TestBandOfPartitionsUnitInterval(t *testing.T) {
	if BandOf(0.0) != 0 {
		t.Fatalf("BandOf(0) = %d", BandOf(0.0))
	}
	if BandOf(1.0) != models.BandCount-1 {
		t.Fatalf("BandOf(1) = %d", BandOf(1.0))
	}
	// lower bound inclusive
	for b := 0; b < models.BandCount; b++ {
		if got := BandOf(float64(b) / 10); got != b {
			t.Fatalf("BandOf(%v) = %d, want %d", float64(b)/10, got, b)
		}
	}
	// every value lands in exactly one band, contiguous and ordered
	prev := 0
	for r := 0.0; r <= 1.0; r += 0.001 {
		b := BandOf(r)
		if b < 0 || b >= models.BandCount {
			t.Fatalf("BandOf(%v) = %d out of range", r, b)
		}
		if b < prev {
			t.Fatalf("band regressed at %v: %d < %d", r, b, prev)
		}
		prev = b
	}
}

func TestBandOfSettlesEdgeNoise(t *testing.T) {
	// interpolating 0.055 over a linear 0.01..0.10 grid yields the double
	// just below 0.5; the band edge must still resolve upward
	below := math.Nextafter(0.5, 0)
	if got := BandOf(below); got != 5 {
		t.Fatalf("BandOf(%v) = %d, want 5", below, got)
	}
	if got := BandOf(0.49999999999999994); got != 5 {
		t.Fatalf("BandOf(0.49999999999999994) = %d, want 5", got)
	}
	// a genuinely sub-boundary risk stays in the lower band
	if got := BandOf(0.4999999); got != 4 {
		t.Fatalf("BandOf(0.4999999) = %d, want 4", got)
	}
}

func TestBandOfClampsOutside(t *testing.T) {
	if BandOf(-0.2) != 0 {
		t.Fatalf("negative risk should clamp to band 0")
	}
	if BandOf(1.7) != models.BandCount-1 {
		t.Fatalf("risk above 1 should clamp to last band")
	}
}

func TestBandLabel(t *testing.T) {
	if BandLabel(0) != "0.0-0.1" {
		t.Fatalf("label 0 = %s", BandLabel(0))
	}
	if BandLabel(9) != "0.9-1.0" {
		t.Fatalf("label 9 = %s", BandLabel(9))
	}
	if BandLabel(3) != "0.3-0.4" {
		t.Fatalf("label 3 = %s", BandLabel(3))
	}
}

func TestBandMidpoint(t *testing.T) {
	if BandMidpoint(0) != 0.05 {
		t.Fatalf("midpoint 0 = %v", BandMidpoint(0))
	}
	if BandMidpoint(9) != 0.95 {
		t.Fatalf("midpoint 9 = %v", BandMidpoint(9))
	}
}

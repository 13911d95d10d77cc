package risk

import (
	"errors"
	"math"
	"testing"

	"RiskPulse/internal/domain/models"
)

func testGrid(t *testing.T, pts ...models.GridPoint) *Grid {
	t.Helper()
	g, err := NewGrid("BTC", models.DenomFiat, pts)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func pt(price, risk float64) models.GridPoint {
	return models.GridPoint{Symbol: "BTC", Denomination: models.DenomFiat, Price: price, Risk: risk}
}

func TestRiskAtPriceInterpolates(t *testing.T) {
	g := testGrid(t, pt(100, 0.0), pt(200, 0.5), pt(300, 1.0))

	got := g.RiskAtPrice(150)
	if math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("risk at 150 = %v, want 0.25", got)
	}
	if BandOf(got) != 2 {
		t.Fatalf("band = %d, want 2 (0.2-0.3)", BandOf(got))
	}
}

func TestRiskAtPriceClampsOutOfRange(t *testing.T) {
	g := testGrid(t, pt(100, 0.0), pt(300, 1.0))

	if got := g.RiskAtPrice(50); got != 0.0 {
		t.Fatalf("below-min risk = %v, want 0", got)
	}
	if got := g.RiskAtPrice(1000); got != 1.0 {
		t.Fatalf("above-max risk = %v, want 1", got)
	}
	if got := g.PriceAtRisk(-0.5); got != 100 {
		t.Fatalf("below-min price = %v, want 100", got)
	}
	if got := g.PriceAtRisk(2); got != 300 {
		t.Fatalf("above-max price = %v, want 300", got)
	}
}

func TestRoundTripWithinRange(t *testing.T) {
	g := testGrid(t, pt(100, 0.0), pt(180, 0.3), pt(240, 0.55), pt(300, 0.8), pt(500, 1.0))
	for p := 100.0; p <= 500.0; p += 7.5 {
		r := g.RiskAtPrice(p)
		back := g.PriceAtRisk(r)
		if math.Abs(back-p) > 1e-6 {
			t.Fatalf("round trip %v -> %v -> %v", p, r, back)
		}
	}
}

func TestFlatSegmentGuard(t *testing.T) {
	// two points at the same price must not divide by zero
	g := testGrid(t, pt(100, 0.0), pt(100.000001, 0.5), pt(300, 1.0))
	r := g.RiskAtPrice(100.0000005)
	if r < 0 || r > 0.5 {
		t.Fatalf("risk on near-flat segment = %v", r)
	}
}

func TestEmptyGridIsNoData(t *testing.T) {
	_, err := NewGrid("XRP", models.DenomFiat, nil)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestNonMonotonicGridIsInvariantError(t *testing.T) {
	_, err := NewGrid("BTC", models.DenomFiat, []models.GridPoint{
		pt(100, 0.0), pt(90, 0.5), pt(300, 1.0),
	})
	if !IsInvariant(err) {
		t.Fatalf("expected InvariantError, got %v", err)
	}

	_, err = NewGrid("BTC", models.DenomFiat, []models.GridPoint{
		pt(100, 0.2), pt(150, 0.2),
	})
	if !IsInvariant(err) {
		t.Fatalf("expected InvariantError for duplicate risk, got %v", err)
	}
}

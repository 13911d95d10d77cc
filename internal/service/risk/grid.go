package risk

import (
	"fmt"
	"sort"

	"RiskPulse/internal/domain/models"
)

// Grid is an immutable, sorted (price, risk) table for one (symbol,
// denomination). Risk is strictly increasing and price non-decreasing across
// points; both directions of interpolation rely on that.
type Grid struct {
	symbol string
	denom  models.Denomination
	points []models.GridPoint
}

// NewGrid sorts the snapshot by risk and validates the monotonicity
// invariant. An empty snapshot is ErrNoData; a non-monotonic one is an
// InvariantError and must not be interpolated over.
func NewGrid(symbol string, denom models.Denomination, points []models.GridPoint) (*Grid, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("grid %s/%s: %w", symbol, denom, ErrNoData)
	}
	ps := make([]models.GridPoint, len(points))
	copy(ps, points)
	sort.Slice(ps, func(i, j int) bool { return ps[i].Risk < ps[j].Risk })

	for i := range ps {
		if ps[i].Risk < 0 || ps[i].Risk > 1 {
			return nil, &InvariantError{Symbol: symbol, Reason: fmt.Sprintf("grid risk %.4f outside [0,1]", ps[i].Risk)}
		}
		if ps[i].Price <= 0 {
			return nil, &InvariantError{Symbol: symbol, Reason: fmt.Sprintf("grid price %.8f not positive", ps[i].Price)}
		}
		if i == 0 {
			continue
		}
		if ps[i].Risk == ps[i-1].Risk {
			return nil, &InvariantError{Symbol: symbol, Reason: fmt.Sprintf("duplicate grid risk %.4f", ps[i].Risk)}
		}
		if ps[i].Price < ps[i-1].Price {
			return nil, &InvariantError{Symbol: symbol, Reason: fmt.Sprintf("grid price not monotonic at risk %.4f", ps[i].Risk)}
		}
	}
	return &Grid{symbol: symbol, denom: denom, points: ps}, nil
}

func (g *Grid) Symbol() string { return g.symbol }

func (g *Grid) Denomination() models.Denomination { return g.denom }

func (g *Grid) Len() int { return len(g.points) }

// MinPrice and MaxPrice bound the tabulated range.
func (g *Grid) MinPrice() float64 { return g.points[0].Price }
func (g *Grid) MaxPrice() float64 { return g.points[len(g.points)-1].Price }

// RiskAtPrice maps a price onto [0,1] risk by linear interpolation between the
// bracketing grid points. Prices outside the tabulated range clamp to the
// boundary risk; the whole-history grid is expected to bound realistic prices.
func (g *Grid) RiskAtPrice(price float64) float64 {
	pts := g.points
	if price <= pts[0].Price {
		return pts[0].Risk
	}
	last := pts[len(pts)-1]
	if price >= last.Price {
		return last.Risk
	}
	// first point with price >= target; pts[i-1].Price < price <= pts[i].Price
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Price >= price })
	lo, hi := pts[i-1], pts[i]
	if hi.Price == lo.Price {
		return lo.Risk
	}
	return lo.Risk + (hi.Risk-lo.Risk)*(price-lo.Price)/(hi.Price-lo.Price)
}

// PriceAtRisk is the inverse mapping, with the same boundary clamping.
func (g *Grid) PriceAtRisk(risk float64) float64 {
	pts := g.points
	if risk <= pts[0].Risk {
		return pts[0].Price
	}
	last := pts[len(pts)-1]
	if risk >= last.Risk {
		return last.Price
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].Risk >= risk })
	lo, hi := pts[i-1], pts[i]
	if hi.Risk == lo.Risk {
		return lo.Price
	}
	return lo.Price + (hi.Price-lo.Price)*(risk-lo.Risk)/(hi.Risk-lo.Risk)
}

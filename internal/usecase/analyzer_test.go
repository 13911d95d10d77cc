package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/repository"
	"RiskPulse/internal/service/risk"
)

func newTestAnalyzer(t *testing.T) (*Analyzer, *repository.MemoryGridStore, *repository.MemoryStateStore) {
	t.Helper()
	grids := repository.NewMemoryGridStore()
	state := repository.NewMemoryStateStore()
	a := NewAnalyzer(grids, state, nopMetrics{}, newTestLogger(t), "BTC")
	return a, grids, state
}

func TestAnalyzeWithExplicitPrice(t *testing.T) {
	a, grids, _ := newTestAnalyzer(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	price := 14500.0 // midway between the 0.0 and 0.1 grid points
	out, err := a.Analyze(context.Background(), "BTC", &price)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Symbol != "BTC" || out.Price != price {
		t.Fatalf("symbol/price = %s/%v", out.Symbol, out.Price)
	}
	if math.Abs(out.Risk-0.05) > 1e-9 {
		t.Fatalf("risk = %v, want 0.05", out.Risk)
	}
	if out.Band != 0 {
		t.Fatalf("band = %d, want 0", out.Band)
	}
	if out.BaseScore != 100 {
		t.Fatalf("base = %v, want 100", out.BaseScore)
	}
	if out.Coefficient != 1.0 {
		t.Fatalf("coefficient = %v, want 1.0 for empty distribution", out.Coefficient)
	}
	if out.TotalScore != 100 {
		t.Fatalf("total = %v, want 100", out.TotalScore)
	}
	if out.SignalType != models.SignalLong {
		t.Fatalf("signal = %s, want LONG", out.SignalType)
	}
}

func TestAnalyzeUsesLatestStatePrice(t *testing.T) {
	a, grids, state := newTestAnalyzer(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	st := &models.CurrentRiskState{
		Symbol:      "BTC",
		Price:       55000,
		Risk:        0.5,
		Band:        5,
		LastUpdated: time.Now().UTC(),
	}
	if err := state.PutState(context.Background(), st); err != nil {
		t.Fatalf("put state: %v", err)
	}

	out, err := a.Analyze(context.Background(), "BTC", nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Price != 55000 {
		t.Fatalf("price = %v, want state price 55000", out.Price)
	}
	if math.Abs(out.Risk-0.5) > 1e-9 {
		t.Fatalf("risk = %v, want 0.5", out.Risk)
	}
	if out.Band != 5 {
		t.Fatalf("band = %d, want 5", out.Band)
	}
	if out.SignalType != models.SignalNeutral {
		t.Fatalf("signal = %s, want NEUTRAL", out.SignalType)
	}
}

func TestAnalyzeNoGrid(t *testing.T) {
	a, _, _ := newTestAnalyzer(t)

	price := 100.0
	if _, err := a.Analyze(context.Background(), "DOGE", &price); !errors.Is(err, risk.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestAnalyzeNoPriceNoState(t *testing.T) {
	a, grids, _ := newTestAnalyzer(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	if _, err := a.Analyze(context.Background(), "BTC", nil); !errors.Is(err, risk.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestPhaseExplicitPairPrice(t *testing.T) {
	a, grids, state := newTestAnalyzer(t)
	seedGrid(t, grids, "ETH", models.DenomFiat, 1000, 5000)
	seedGrid(t, grids, "ETH", models.DenomBTC, 0.01, 0.10)

	st := &models.CurrentRiskState{Symbol: "ETH", Price: 3000, Risk: 0.5, Band: 5, LastUpdated: time.Now().UTC()}
	if err := state.PutState(context.Background(), st); err != nil {
		t.Fatalf("put state: %v", err)
	}

	pairPrice := 0.055 // midpoint of the BTC-denominated grid
	phase, err := a.Phase(context.Background(), "ETH", &pairPrice)
	if err != nil {
		t.Fatalf("phase: %v", err)
	}
	if math.Abs(phase.PairRisk-0.5) > 1e-9 {
		t.Fatalf("pair risk = %v, want 0.5", phase.PairRisk)
	}
	if phase.PairBand != 5 {
		t.Fatalf("pair band = %d, want 5", phase.PairBand)
	}
	if phase.MarketPhase != models.PhaseEarlyTransition {
		t.Fatalf("phase = %s, want EARLY_TRANSITION", phase.MarketPhase)
	}
	if phase.Insight == "" {
		t.Fatalf("insight is empty")
	}
}

func TestPhaseDerivesPairPriceFromStates(t *testing.T) {
	a, grids, state := newTestAnalyzer(t)
	seedGrid(t, grids, "ETH", models.DenomBTC, 0.01, 0.10)

	ctx := context.Background()
	if err := state.PutState(ctx, &models.CurrentRiskState{Symbol: "ETH", Price: 3300, Risk: 0.4, Band: 4}); err != nil {
		t.Fatalf("put eth state: %v", err)
	}
	if err := state.PutState(ctx, &models.CurrentRiskState{Symbol: "BTC", Price: 60000, Risk: 0.6, Band: 6}); err != nil {
		t.Fatalf("put btc state: %v", err)
	}

	// 3300 / 60000 = 0.055, the pair grid midpoint
	phase, err := a.Phase(ctx, "ETH", nil)
	if err != nil {
		t.Fatalf("phase: %v", err)
	}
	if math.Abs(phase.PairRisk-0.5) > 1e-9 {
		t.Fatalf("pair risk = %v, want 0.5", phase.PairRisk)
	}
}

func TestPhaseBaseSymbolRejected(t *testing.T) {
	a, grids, state := newTestAnalyzer(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	if err := state.PutState(context.Background(), &models.CurrentRiskState{Symbol: "BTC", Price: 55000, Risk: 0.5, Band: 5}); err != nil {
		t.Fatalf("put state: %v", err)
	}
	if _, err := a.Phase(context.Background(), "BTC", nil); !errors.Is(err, risk.ErrBaseSymbol) {
		t.Fatalf("err = %v, want ErrBaseSymbol", err)
	}
}

func TestAnalyzeBaseSymbolOmitsPhase(t *testing.T) {
	a, grids, _ := newTestAnalyzer(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	price := 55000.0
	out, err := a.Analyze(context.Background(), "BTC", &price)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if out.Phase != nil {
		t.Fatalf("phase = %+v, want none for the base symbol", out.Phase)
	}
}

package usecase

import (
	"context"
	"math"
	"testing"
	"time"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/repository"
)

func newProcessorFixture(t *testing.T) (*PriceProcessor, *repository.MemoryGridStore, *repository.MemoryStateStore, *capturePublisher) {
	t.Helper()
	grids := repository.NewMemoryGridStore()
	state := repository.NewMemoryStateStore()
	signals := &capturePublisher{}
	p := NewPriceProcessor(grids, state, signals, nopMetrics{}, newTestLogger(t))
	return p, grids, state, signals
}

func update(symbol string, price float64) *models.PriceUpdate {
	return &models.PriceUpdate{
		Symbol:       symbol,
		Denomination: models.DenomFiat,
		Price:        price,
		Timestamp:    time.Now().Unix(),
	}
}

func TestProcessStoresState(t *testing.T) {
	p, grids, state, _ := newProcessorFixture(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	ctx := context.Background()
	if err := p.Process(ctx, update("BTC", 55000)); err != nil {
		t.Fatalf("process: %v", err)
	}

	st, err := state.GetState(ctx, "BTC")
	if err != nil || st == nil {
		t.Fatalf("state: %v %v", st, err)
	}
	if math.Abs(st.Risk-0.5) > 1e-9 {
		t.Fatalf("risk = %v, want 0.5", st.Risk)
	}
	if st.Band != 5 {
		t.Fatalf("band = %d, want 5", st.Band)
	}
	if st.Price != 55000 {
		t.Fatalf("price = %v", st.Price)
	}
}

func TestProcessBandChangePublishes(t *testing.T) {
	p, grids, _, signals := newProcessorFixture(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	ctx := context.Background()
	if err := p.Process(ctx, update("BTC", 14500)); err != nil { // band 0
		t.Fatalf("first update: %v", err)
	}
	if len(signals.Events()) != 0 {
		t.Fatalf("no event expected on the first observation")
	}

	if err := p.Process(ctx, update("BTC", 55000)); err != nil { // band 5
		t.Fatalf("second update: %v", err)
	}

	evs := signals.Events()
	if len(evs) != 1 {
		t.Fatalf("events = %d, want 1", len(evs))
	}
	ev := evs[0]
	if ev.Reason != "band_change" {
		t.Fatalf("reason = %s", ev.Reason)
	}
	if ev.PreviousBand != 0 || ev.Band != 5 {
		t.Fatalf("bands = %d -> %d, want 0 -> 5", ev.PreviousBand, ev.Band)
	}
}

func TestProcessSameBandStaysSilent(t *testing.T) {
	p, grids, _, signals := newProcessorFixture(t)
	seedGrid(t, grids, "BTC", models.DenomFiat, 10000, 100000)

	ctx := context.Background()
	if err := p.Process(ctx, update("BTC", 55000)); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := p.Process(ctx, update("BTC", 56000)); err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(signals.Events()) != 0 {
		t.Fatalf("band did not change, no event expected")
	}
}

func TestProcessWithoutGridSkips(t *testing.T) {
	p, _, state, _ := newProcessorFixture(t)

	ctx := context.Background()
	if err := p.Process(ctx, update("DOGE", 0.1)); err != nil {
		t.Fatalf("process should skip unknown symbols, got %v", err)
	}
	if st, _ := state.GetState(ctx, "DOGE"); st != nil {
		t.Fatalf("state written for symbol without grid: %+v", st)
	}
}

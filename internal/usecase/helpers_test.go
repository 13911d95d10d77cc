package usecase

import (
	"context"
	"sync"
	"testing"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/repository"
	applogger "RiskPulse/pkg/logger"
)

func newTestLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

type nopMetrics struct{}

func (nopMetrics) RecordUpdate(string)           {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordRisk(string, float64)    {}
func (nopMetrics) RecordLatency(string, float64) {}

// capturePublisher records published signal events.
type capturePublisher struct {
	mu     sync.Mutex
	events []*models.SignalEvent
}

func (p *capturePublisher) Publish(_ context.Context, ev *models.SignalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) Events() []*models.SignalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*models.SignalEvent, len(p.events))
	copy(out, p.events)
	return out
}

// linearGrid builds 11 points at risks 0.0 .. 1.0 with price growing
// linearly from minPrice to maxPrice.
func linearGrid(symbol string, denom models.Denomination, minPrice, maxPrice float64) []models.GridPoint {
	points := make([]models.GridPoint, 0, 11)
	for i := 0; i <= 10; i++ {
		risk := float64(i) / 10
		points = append(points, models.GridPoint{
			Symbol:       symbol,
			Denomination: denom,
			Price:        minPrice + (maxPrice-minPrice)*risk,
			Risk:         risk,
		})
	}
	return points
}

func seedGrid(t *testing.T, store *repository.MemoryGridStore, symbol string, denom models.Denomination, minPrice, maxPrice float64) {
	t.Helper()
	if err := store.Replace(context.Background(), symbol, denom, linearGrid(symbol, denom, minPrice, maxPrice)); err != nil {
		t.Fatalf("seed grid %s/%s: %v", symbol, denom, err)
	}
}

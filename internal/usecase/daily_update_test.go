package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/repository"
	"RiskPulse/internal/service/risk"
)

type dailyFixture struct {
	updater *DailyUpdater
	state   *repository.MemoryStateStore
	history *repository.MemoryHistoryStore
	locker  *repository.MemoryLocker
	signals *capturePublisher
}

func newDailyFixture(t *testing.T, symbols ...string) *dailyFixture {
	t.Helper()
	state := repository.NewMemoryStateStore()
	history := repository.NewMemoryHistoryStore()
	locker := repository.NewMemoryLocker()
	signals := &capturePublisher{}
	u := NewDailyUpdater(state, history, locker, signals, nopMetrics{}, newTestLogger(t), symbols)
	return &dailyFixture{updater: u, state: state, history: history, locker: locker, signals: signals}
}

// flakyStateStore refuses a configured number of distribution writes.
type flakyStateStore struct {
	*repository.MemoryStateStore
	failPuts int
}

func (s *flakyStateStore) PutDistribution(ctx context.Context, d *models.BandTimeDistribution) error {
	if s.failPuts > 0 {
		s.failPuts--
		return errors.New("distribution write refused")
	}
	return s.MemoryStateStore.PutDistribution(ctx, d)
}

func seedState(t *testing.T, state *repository.MemoryStateStore, symbol string, price, riskValue float64, band int) {
	t.Helper()
	st := &models.CurrentRiskState{
		Symbol:      symbol,
		Price:       price,
		Risk:        riskValue,
		Band:        band,
		LastUpdated: time.Now().UTC(),
	}
	if err := state.PutState(context.Background(), st); err != nil {
		t.Fatalf("seed state %s: %v", symbol, err)
	}
}

func TestAdvanceOneDayCountsDay(t *testing.T) {
	f := newDailyFixture(t, "ETH")
	seedState(t, f.state, "ETH", 1200, 0.22, 2)

	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	rec, err := f.updater.AdvanceOneDay(ctx, "ETH", day)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if rec == nil || rec.Band != 2 || rec.Price != 1200 {
		t.Fatalf("record = %+v", rec)
	}

	dist, err := f.state.GetDistribution(ctx, "ETH")
	if err != nil || dist == nil {
		t.Fatalf("distribution: %v %v", dist, err)
	}
	if dist.Days[2] != 1 || dist.TotalDays != 1 {
		t.Fatalf("days[2]=%d total=%d, want 1/1", dist.Days[2], dist.TotalDays)
	}
	if dist.Coefficients[2] != 1.0 {
		t.Fatalf("coefficient = %v, want 1.0 when only one band is populated", dist.Coefficients[2])
	}

	got, err := f.history.Get(ctx, "ETH", day)
	if err != nil || got == nil {
		t.Fatalf("history row: %v %v", got, err)
	}

	evs := f.signals.Events()
	if len(evs) != 1 || evs[0].Reason != "daily_refresh" {
		t.Fatalf("events = %+v, want one daily_refresh", evs)
	}
}

func TestAdvanceOneDaySameDateIsIdempotent(t *testing.T) {
	f := newDailyFixture(t, "ETH")
	seedState(t, f.state, "ETH", 1200, 0.22, 2)

	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := f.updater.AdvanceOneDay(ctx, "ETH", day); err != nil {
		t.Fatalf("first advance: %v", err)
	}

	// The state moved intraday; a rerun must refresh the row, not count again.
	seedState(t, f.state, "ETH", 1250, 0.24, 2)
	rec, err := f.updater.AdvanceOneDay(ctx, "ETH", day)
	if err != nil {
		t.Fatalf("second advance: %v", err)
	}
	if rec == nil || rec.Price != 1250 {
		t.Fatalf("refreshed record = %+v", rec)
	}

	dist, _ := f.state.GetDistribution(ctx, "ETH")
	if dist.TotalDays != 1 || dist.Days[2] != 1 {
		t.Fatalf("days[2]=%d total=%d after rerun, want 1/1", dist.Days[2], dist.TotalDays)
	}

	got, _ := f.history.Get(ctx, "ETH", day)
	if got == nil || got.Price != 1250 {
		t.Fatalf("history row = %+v, want refreshed price 1250", got)
	}
}

func TestAdvanceOneDayDistinctDates(t *testing.T) {
	f := newDailyFixture(t, "ETH")
	seedState(t, f.state, "ETH", 1200, 0.22, 2)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		day := time.Date(2025, 3, 10+i, 0, 0, 0, 0, time.UTC)
		if _, err := f.updater.AdvanceOneDay(ctx, "ETH", day); err != nil {
			t.Fatalf("advance day %d: %v", i, err)
		}
	}

	dist, _ := f.state.GetDistribution(ctx, "ETH")
	if dist.TotalDays != 3 || dist.Days[2] != 3 {
		t.Fatalf("days[2]=%d total=%d, want 3/3", dist.Days[2], dist.TotalDays)
	}
}

func TestAdvanceOneDayNoState(t *testing.T) {
	f := newDailyFixture(t, "ETH")

	_, err := f.updater.AdvanceOneDay(context.Background(), "ETH", time.Now().UTC())
	if !errors.Is(err, risk.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestAdvanceOneDayInvariantViolationHalts(t *testing.T) {
	f := newDailyFixture(t, "ETH")
	seedState(t, f.state, "ETH", 1200, 0.22, 2)

	ctx := context.Background()
	corrupt := models.NewBandTimeDistribution("ETH")
	corrupt.TotalDays = 5 // no band days backing it
	if err := f.state.PutDistribution(ctx, &corrupt); err != nil {
		t.Fatalf("seed distribution: %v", err)
	}

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := f.updater.AdvanceOneDay(ctx, "ETH", day)
	if !risk.IsInvariant(err) {
		t.Fatalf("err = %v, want invariant violation", err)
	}

	// Nothing may be persisted for a halted symbol.
	dist, _ := f.state.GetDistribution(ctx, "ETH")
	if dist.TotalDays != 5 || dist.Days[2] != 0 {
		t.Fatalf("distribution mutated: %+v", dist)
	}
	if rec, _ := f.history.Get(ctx, "ETH", day); rec != nil {
		t.Fatalf("history row written despite violation: %+v", rec)
	}
	if len(f.signals.Events()) != 0 {
		t.Fatalf("signal published despite violation")
	}

	// The halted run must not keep the day locked: once the distribution is
	// repaired the same date can be counted.
	repaired := models.NewBandTimeDistribution("ETH")
	if err := f.state.PutDistribution(ctx, &repaired); err != nil {
		t.Fatalf("repair distribution: %v", err)
	}
	if _, err := f.updater.AdvanceOneDay(ctx, "ETH", day); err != nil {
		t.Fatalf("advance after repair: %v", err)
	}
}

func TestAdvanceOneDayRetriesAfterFailedRun(t *testing.T) {
	state := &flakyStateStore{MemoryStateStore: repository.NewMemoryStateStore(), failPuts: 1}
	history := repository.NewMemoryHistoryStore()
	u := NewDailyUpdater(state, history, repository.NewMemoryLocker(), &capturePublisher{}, nopMetrics{}, newTestLogger(t), []string{"ETH"})
	seedState(t, state.MemoryStateStore, "ETH", 1200, 0.22, 2)

	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	if _, err := u.AdvanceOneDay(ctx, "ETH", day); err == nil {
		t.Fatalf("first run should fail on the distribution write")
	}

	// The failed run must have given the lock back; the retry counts the day.
	rec, err := u.AdvanceOneDay(ctx, "ETH", day)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if rec == nil {
		t.Fatalf("retry returned no record")
	}

	dist, _ := state.GetDistribution(ctx, "ETH")
	if dist == nil || dist.TotalDays != 1 || dist.Days[2] != 1 {
		t.Fatalf("distribution after retry = %+v, want 1 day in band 2", dist)
	}
	if got, _ := history.Get(ctx, "ETH", day); got == nil {
		t.Fatalf("history row missing after retry")
	}
}

func TestAdvanceOneDayLockHeldElsewhere(t *testing.T) {
	f := newDailyFixture(t, "ETH")
	seedState(t, f.state, "ETH", 1200, 0.22, 2)

	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	if ok, err := f.locker.AcquireDaily(ctx, "ETH", day); err != nil || !ok {
		t.Fatalf("pre-acquire lock: %v %v", ok, err)
	}

	// Another run owns the day: the caller must get a retryable error, not a
	// silent success.
	rec, err := f.updater.AdvanceOneDay(ctx, "ETH", day)
	if err == nil || rec != nil {
		t.Fatalf("rec=%+v err=%v, want error while lock is held", rec, err)
	}
	if dist, _ := f.state.GetDistribution(ctx, "ETH"); dist != nil {
		t.Fatalf("distribution advanced under a foreign lock: %+v", dist)
	}

	// Once the owner releases, the same date counts normally.
	if err := f.locker.ReleaseDaily(ctx, "ETH", day); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := f.updater.AdvanceOneDay(ctx, "ETH", day); err != nil {
		t.Fatalf("advance after release: %v", err)
	}
	dist, _ := f.state.GetDistribution(ctx, "ETH")
	if dist == nil || dist.TotalDays != 1 {
		t.Fatalf("distribution = %+v, want 1 counted day", dist)
	}
}

func TestAdvanceAllIsolatesFailures(t *testing.T) {
	f := newDailyFixture(t, "DOGE", "ETH")
	seedState(t, f.state, "ETH", 1200, 0.22, 2) // DOGE has no state

	ctx := context.Background()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	err := f.updater.AdvanceAll(ctx, day)
	if err == nil || !strings.Contains(err.Error(), "1/2") {
		t.Fatalf("err = %v, want 1/2 symbols failed", err)
	}

	if rec, _ := f.history.Get(ctx, "ETH", day); rec == nil {
		t.Fatalf("healthy symbol was not advanced")
	}
	dist, _ := f.state.GetDistribution(ctx, "ETH")
	if dist == nil || dist.TotalDays != 1 {
		t.Fatalf("healthy symbol distribution = %+v", dist)
	}
}

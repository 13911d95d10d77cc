package usecase

import (
	"context"
	"fmt"
	"time"

	"RiskPulse/internal/domain/models"
	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/internal/service/risk"
	applogger "RiskPulse/pkg/logger"
	"RiskPulse/pkg/util"
)

// DailyUpdater advances the band time distribution by one elapsed day per
// symbol. Runs are idempotent per (symbol, date): an advisory lock plus the
// history row guarantee a day is counted exactly once, and a repeated run
// only refreshes the recorded values.
type DailyUpdater struct {
	state   drepo.StateStore
	history drepo.HistoryStore
	locker  drepo.Locker
	signals drepo.SignalPublisher
	metrics drepo.Metrics
	logger  *applogger.Logger
	symbols []string
}

func NewDailyUpdater(
	state drepo.StateStore,
	history drepo.HistoryStore,
	locker drepo.Locker,
	signals drepo.SignalPublisher,
	metrics drepo.Metrics,
	lgr *applogger.Logger,
	symbols []string,
) *DailyUpdater {
	return &DailyUpdater{
		state:   state,
		history: history,
		locker:  locker,
		signals: signals,
		metrics: metrics,
		logger:  lgr,
		symbols: symbols,
	}
}

// AdvanceOneDay counts one elapsed day for the symbol's current band and
// appends the daily history row for the given date.
func (u *DailyUpdater) AdvanceOneDay(ctx context.Context, symbol string, date time.Time) (*models.DailyHistoryRecord, error) {
	day := util.TruncateDay(date)
	start := time.Now()

	st, err := u.state.GetState(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", symbol, err)
	}
	if st == nil {
		return nil, risk.ErrNoData
	}

	rec := &models.DailyHistoryRecord{
		Symbol: symbol,
		Date:   day,
		Risk:   st.Risk,
		Band:   st.Band,
		Price:  st.Price,
	}

	locked, err := u.locker.AcquireDaily(ctx, symbol, day)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", symbol, err)
	}

	// A run that acquired the lock but did not count the day must give the
	// lock back, otherwise the day stays uncountable until the lock expires.
	counted := false
	if locked {
		defer func() {
			if counted {
				return
			}
			if rerr := u.locker.ReleaseDaily(ctx, symbol, day); rerr != nil {
				u.logger.Warn("daily lock release failed",
					applogger.String("symbol", symbol),
					applogger.String("date", util.DayKey(day)),
					applogger.Error(rerr))
			}
		}()
	}

	existing, err := u.history.Get(ctx, symbol, day)
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", symbol, err)
	}

	if existing != nil {
		// The day was already counted. Refresh the recorded values but never
		// touch the distribution again.
		if err := u.history.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("refresh history %s: %w", symbol, err)
		}
		u.logger.Info("daily record refreshed",
			applogger.String("symbol", symbol),
			applogger.String("date", util.DayKey(day)))
		return rec, nil
	}

	if !locked {
		// Another run is advancing this (symbol, date) right now; the caller
		// retries rather than treating the day as handled.
		return nil, fmt.Errorf("daily advance %s %s: lock held by another run", symbol, util.DayKey(day))
	}

	dist, err := u.loadDistribution(ctx, symbol)
	if err != nil {
		return nil, err
	}

	dist.Days[st.Band]++
	dist.TotalDays++
	next := risk.RecomputeCoefficients(*dist)

	if !next.CheckDays() {
		u.metrics.RecordError("invariant_violation")
		return nil, &risk.InvariantError{
			Symbol: symbol,
			Reason: fmt.Sprintf("band days do not sum to total_days=%d", next.TotalDays),
		}
	}

	if err := u.state.PutDistribution(ctx, &next); err != nil {
		return nil, fmt.Errorf("store distribution %s: %w", symbol, err)
	}
	// The distribution is advanced: from here the lock must stay held, a
	// retry that re-incremented would double-count the day.
	counted = true

	if err := u.history.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("append history %s: %w", symbol, err)
	}

	score := risk.Score(symbol, st.Risk, next.Coefficients[st.Band])
	if err := u.state.PutScore(ctx, &score); err != nil {
		u.logger.Warn("score cache write failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
	}

	u.publishDailyRefresh(ctx, st, &score)

	u.metrics.RecordLatency("daily_advance", time.Since(start).Seconds())
	u.logger.Info("daily advance done",
		applogger.String("symbol", symbol),
		applogger.String("date", util.DayKey(day)),
		applogger.Int("band", st.Band),
		applogger.Int("total_days", next.TotalDays))
	return rec, nil
}

// AdvanceAll advances every configured symbol for the date. Failures are
// isolated per symbol; an invariant violation halts only that symbol.
func (u *DailyUpdater) AdvanceAll(ctx context.Context, date time.Time) error {
	var failed int
	for _, symbol := range u.symbols {
		if _, err := u.AdvanceOneDay(ctx, symbol, date); err != nil {
			failed++
			if risk.IsInvariant(err) {
				u.logger.Error("daily advance halted for symbol",
					applogger.String("symbol", symbol),
					applogger.Error(err))
				continue
			}
			u.metrics.RecordError("daily_advance")
			u.logger.Error("daily advance failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("daily advance: %d/%d symbols failed", failed, len(u.symbols))
	}
	return nil
}

// Symbols returns the configured symbol set.
func (u *DailyUpdater) Symbols() []string { return u.symbols }

func (u *DailyUpdater) publishDailyRefresh(ctx context.Context, st *models.CurrentRiskState, score *models.ScoreResult) {
	ev := &models.SignalEvent{
		Symbol:         st.Symbol,
		Risk:           st.Risk,
		Band:           st.Band,
		PreviousBand:   st.Band,
		TotalScore:     score.TotalScore,
		SignalType:     score.SignalType,
		SignalStrength: score.SignalStrength,
		Reason:         "daily_refresh",
		Timestamp:      time.Now().Unix(),
	}
	if err := u.signals.Publish(ctx, ev); err != nil {
		u.metrics.RecordError("signal_publish")
		u.logger.Warn("signal publish failed",
			applogger.String("symbol", st.Symbol),
			applogger.Error(err))
	}
}

func (u *DailyUpdater) loadDistribution(ctx context.Context, symbol string) (*models.BandTimeDistribution, error) {
	dist, err := u.state.GetDistribution(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load distribution %s: %w", symbol, err)
	}
	if dist == nil {
		d := models.NewBandTimeDistribution(symbol)
		return &d, nil
	}
	return dist, nil
}

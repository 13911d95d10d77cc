package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RiskPulse/internal/domain/models"
	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/internal/service/risk"
	applogger "RiskPulse/pkg/logger"
)

// PriceProcessor maps incoming price updates onto the symbol's grid and
// maintains CurrentRiskState. A band crossing publishes a signal event.
// Updates for symbols without a grid are counted and skipped.
type PriceProcessor struct {
	grids   drepo.GridStore
	state   drepo.StateStore
	signals drepo.SignalPublisher
	metrics drepo.Metrics
	logger  *applogger.Logger
}

func NewPriceProcessor(
	grids drepo.GridStore,
	state drepo.StateStore,
	signals drepo.SignalPublisher,
	metrics drepo.Metrics,
	lgr *applogger.Logger,
) *PriceProcessor {
	return &PriceProcessor{
		grids:   grids,
		state:   state,
		signals: signals,
		metrics: metrics,
		logger:  lgr,
	}
}

// Process handles a single price update.
func (p *PriceProcessor) Process(ctx context.Context, u *models.PriceUpdate) error {
	if u == nil {
		return fmt.Errorf("update is nil")
	}
	start := time.Now()

	grid, err := p.loadGrid(ctx, u.Symbol, u.Denomination)
	if err != nil {
		if errors.Is(err, risk.ErrNoData) {
			p.metrics.RecordError("no_grid")
			p.logger.Debug("price update for symbol without grid",
				applogger.String("symbol", u.Symbol))
			return nil
		}
		p.metrics.RecordError("grid_load")
		return fmt.Errorf("load grid %s: %w", u.Symbol, err)
	}

	riskValue := grid.RiskAtPrice(u.Price)
	band := risk.BandOf(riskValue)

	prev, err := p.state.GetState(ctx, u.Symbol)
	if err != nil {
		p.metrics.RecordError("state_load")
		return fmt.Errorf("load state %s: %w", u.Symbol, err)
	}

	st := &models.CurrentRiskState{
		Symbol:      u.Symbol,
		Price:       u.Price,
		Risk:        riskValue,
		Band:        band,
		LastUpdated: time.Unix(u.Timestamp, 0).UTC(),
	}
	if err := p.state.PutState(ctx, st); err != nil {
		p.metrics.RecordError("state_store")
		return fmt.Errorf("store state %s: %w", u.Symbol, err)
	}

	p.metrics.RecordUpdate(u.Symbol)
	p.metrics.RecordRisk(u.Symbol, riskValue)

	if prev != nil && prev.Band != band {
		p.publishBandChange(ctx, st, prev.Band)
	}

	p.metrics.RecordLatency("price_process", time.Since(start).Seconds())
	return nil
}

func (p *PriceProcessor) publishBandChange(ctx context.Context, st *models.CurrentRiskState, prevBand int) {
	dist, err := p.state.GetDistribution(ctx, st.Symbol)
	if err != nil || dist == nil {
		d := models.NewBandTimeDistribution(st.Symbol)
		dist = &d
	}

	score := risk.Score(st.Symbol, st.Risk, dist.Coefficients[st.Band])
	ev := &models.SignalEvent{
		Symbol:         st.Symbol,
		Risk:           st.Risk,
		Band:           st.Band,
		PreviousBand:   prevBand,
		TotalScore:     score.TotalScore,
		SignalType:     score.SignalType,
		SignalStrength: score.SignalStrength,
		Reason:         "band_change",
		Timestamp:      st.LastUpdated.Unix(),
	}
	if err := p.signals.Publish(ctx, ev); err != nil {
		p.metrics.RecordError("signal_publish")
		p.logger.Warn("signal publish failed",
			applogger.String("symbol", st.Symbol),
			applogger.Error(err))
		return
	}
	p.logger.Info("band change",
		applogger.String("symbol", st.Symbol),
		applogger.Int("from", prevBand),
		applogger.Int("to", st.Band),
		applogger.Float64("risk", st.Risk))
}

// loadGrid fetches the latest snapshot and wraps it in a validated Grid.
// Returns risk.ErrNoData when no snapshot exists.
func (p *PriceProcessor) loadGrid(ctx context.Context, symbol string, denom models.Denomination) (*risk.Grid, error) {
	points, err := p.grids.Latest(ctx, symbol, denom)
	if err != nil {
		return nil, err
	}
	return risk.NewGrid(symbol, denom, points)
}

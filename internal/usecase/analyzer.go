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

// Analyzer is the read side of the engine: it assembles the full analysis
// view for a symbol from the grid, the current state, and the band time
// distribution. Analysis never mutates state; only the price pipeline and
// the daily updater write.
type Analyzer struct {
	grids      drepo.GridStore
	state      drepo.StateStore
	metrics    drepo.Metrics
	logger     *applogger.Logger
	baseSymbol string
}

func NewAnalyzer(
	grids drepo.GridStore,
	state drepo.StateStore,
	metrics drepo.Metrics,
	lgr *applogger.Logger,
	baseSymbol string,
) *Analyzer {
	if baseSymbol == "" {
		baseSymbol = "BTC"
	}
	return &Analyzer{
		grids:      grids,
		state:      state,
		metrics:    metrics,
		logger:     lgr,
		baseSymbol: baseSymbol,
	}
}

// Analyze computes the full analysis for a symbol. When price is nil the
// latest known price from the live state is used; risk.ErrNoData is returned
// when neither a grid nor a usable price exists.
func (a *Analyzer) Analyze(ctx context.Context, symbol string, price *float64) (*models.Analysis, error) {
	start := time.Now()

	grid, err := a.loadGrid(ctx, symbol, models.DenomFiat)
	if err != nil {
		return nil, err
	}

	st, err := a.state.GetState(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", symbol, err)
	}

	var px float64
	switch {
	case price != nil && *price > 0:
		px = *price
	case st != nil:
		px = st.Price
	default:
		return nil, risk.ErrNoData
	}

	riskValue := grid.RiskAtPrice(px)
	band := risk.BandOf(riskValue)

	dist, err := a.loadDistribution(ctx, symbol)
	if err != nil {
		return nil, err
	}

	score := risk.Score(symbol, riskValue, dist.Coefficients[band])
	target := risk.FindBetterTarget(grid, band, score.SignalType, *dist, score.TotalScore)

	out := &models.Analysis{
		Symbol:         symbol,
		Price:          px,
		Risk:           riskValue,
		Band:           band,
		BandLabel:      risk.BandLabel(band),
		DaysInBand:     dist.Days[band],
		TotalDays:      dist.TotalDays,
		BaseScore:      score.BaseScore,
		Coefficient:    score.Coefficient,
		TotalScore:     score.TotalScore,
		SignalType:     score.SignalType,
		SignalStrength: score.SignalStrength,
		Target:         target,
		Timestamp:      time.Now().UTC(),
	}

	// BTC-relative phase is additive; its absence never fails the analysis.
	if phase, err := a.phaseFor(ctx, symbol, px, nil, score.SignalType); err == nil && phase != nil {
		out.Phase = phase
	}

	if err := a.state.PutScore(ctx, &score); err != nil {
		a.logger.Warn("score cache write failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
	}

	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	return out, nil
}

// Phase computes the BTC-relative market phase for a symbol. When priceBTC
// is nil the ratio of the symbol's and the base symbol's latest fiat prices
// is used.
func (a *Analyzer) Phase(ctx context.Context, symbol string, priceBTC *float64) (*models.PhaseResult, error) {
	if symbol == a.baseSymbol {
		return nil, fmt.Errorf("%s: %w", symbol, risk.ErrBaseSymbol)
	}

	st, err := a.state.GetState(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", symbol, err)
	}

	sig := models.SignalNeutral
	if st != nil {
		if cached, err := a.state.GetScore(ctx, symbol); err == nil && cached != nil {
			sig = cached.SignalType
		} else {
			sig = risk.SignalTypeOf(st.Risk)
		}
	}

	var fiatPrice float64
	if st != nil {
		fiatPrice = st.Price
	}
	phase, err := a.phaseFor(ctx, symbol, fiatPrice, priceBTC, sig)
	if err != nil {
		return nil, err
	}
	if phase == nil {
		return nil, risk.ErrNoData
	}
	return phase, nil
}

func (a *Analyzer) phaseFor(ctx context.Context, symbol string, fiatPrice float64, priceBTC *float64, sig models.SignalType) (*models.PhaseResult, error) {
	if symbol == a.baseSymbol {
		return nil, nil
	}

	pairGrid, err := a.loadGrid(ctx, symbol, models.DenomBTC)
	if err != nil {
		if errors.Is(err, risk.ErrNoData) {
			return nil, nil
		}
		return nil, err
	}

	var px float64
	switch {
	case priceBTC != nil && *priceBTC > 0:
		px = *priceBTC
	case fiatPrice > 0:
		base, err := a.state.GetState(ctx, a.baseSymbol)
		if err != nil || base == nil || base.Price <= 0 {
			return nil, nil
		}
		px = fiatPrice / base.Price
	default:
		return nil, nil
	}

	result := risk.AnalyzePhase(pairGrid, px, sig)
	return &result, nil
}

func (a *Analyzer) loadGrid(ctx context.Context, symbol string, denom models.Denomination) (*risk.Grid, error) {
	points, err := a.grids.Latest(ctx, symbol, denom)
	if err != nil {
		return nil, fmt.Errorf("load grid %s/%s: %w", symbol, denom, err)
	}
	return risk.NewGrid(symbol, denom, points)
}

func (a *Analyzer) loadDistribution(ctx context.Context, symbol string) (*models.BandTimeDistribution, error) {
	dist, err := a.state.GetDistribution(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("load distribution %s: %w", symbol, err)
	}
	if dist == nil {
		d := models.NewBandTimeDistribution(symbol)
		return &d, nil
	}
	return dist, nil
}

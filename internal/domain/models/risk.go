package models

import "time"

// Denomination identifies which grid a price refers to.
type Denomination string

const (
	DenomFiat Denomination = "fiat"
	DenomBTC  Denomination = "btc"
)

// BandCount is the number of decile risk bands.
const BandCount = 10

// GridPoint is a single (price, risk) entry of a symbol's historical grid.
// For a fixed (symbol, denomination) points are unique by risk and price grows
// with risk; grids are replaced wholesale on ingestion and never edited.
type GridPoint struct {
	Symbol       string       `json:"symbol"`
	Denomination Denomination `json:"denomination"`
	Price        float64      `json:"price"`
	Risk         float64      `json:"risk"`
}

// PriceUpdate is an incoming tick from a price feed.
type PriceUpdate struct {
	Symbol       string
	Denomination Denomination
	Price        float64
	Timestamp    int64 // unix seconds
}

// CurrentRiskState is the latest known position of a symbol on its fiat grid.
// One per symbol, overwritten on every price update.
type CurrentRiskState struct {
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	Risk        float64   `json:"risk"`
	Band        int       `json:"band"`
	LastUpdated time.Time `json:"last_updated"`
}

// BandTimeDistribution tracks how many elapsed days a symbol has spent in each
// decile band. Days and Coefficients are indexed by band number; the invariant
// sum(Days) == TotalDays holds after every daily update. Coefficients are
// derived by the coefficient calculator, never set directly.
type BandTimeDistribution struct {
	Symbol       string             `json:"symbol"`
	Days         [BandCount]int     `json:"days"`
	TotalDays    int                `json:"total_days"`
	Coefficients [BandCount]float64 `json:"coefficients"`
}

// NewBandTimeDistribution returns an empty distribution with all
// coefficients at the neutral 1.0.
func NewBandTimeDistribution(symbol string) BandTimeDistribution {
	d := BandTimeDistribution{Symbol: symbol}
	for i := range d.Coefficients {
		d.Coefficients[i] = 1.0
	}
	return d
}

// CheckDays verifies the day-count invariant.
func (d BandTimeDistribution) CheckDays() bool {
	sum := 0
	for _, n := range d.Days {
		sum += n
	}
	return sum == d.TotalDays
}

// DailyHistoryRecord is one appended row per (symbol, date).
type DailyHistoryRecord struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"` // day precision, UTC
	Risk   float64   `json:"risk"`
	Band   int       `json:"band"`
	Price  float64   `json:"price"`
}

// SignalType is the trade direction implied by risk.
type SignalType string

const (
	SignalLong    SignalType = "LONG"
	SignalShort   SignalType = "SHORT"
	SignalNeutral SignalType = "NEUTRAL"
)

// SignalStrength buckets the rarity-weighted total score.
type SignalStrength string

const (
	StrengthStrongest SignalStrength = "STRONGEST"
	StrengthStrong    SignalStrength = "STRONG"
	StrengthModerate  SignalStrength = "MODERATE"
	StrengthWeak      SignalStrength = "WEAK"
)

// ScoreResult is the derived score view for a symbol. It is recomputed on
// demand from CurrentRiskState + BandTimeDistribution and cached, never
// authoritative state.
type ScoreResult struct {
	Symbol         string         `json:"symbol"`
	BaseScore      float64        `json:"base_score"`
	Coefficient    float64        `json:"coefficient"`
	TotalScore     float64        `json:"total_score"`
	SignalType     SignalType     `json:"signal_type"`
	SignalStrength SignalStrength `json:"signal_strength"`
}

// TargetSuggestion describes a strictly rarer band one step away from the
// current one, with the price that would reach it. Absent when no neighbor
// qualifies.
type TargetSuggestion struct {
	TargetPrice       float64 `json:"target_price"`
	TargetRisk        float64 `json:"target_risk"`
	TargetBand        int     `json:"target_band"`
	TargetDays        int     `json:"target_days"`
	TargetCoefficient float64 `json:"target_coefficient"`
	TargetScore       float64 `json:"target_score"`
	Improvement       float64 `json:"improvement"`
}

// MarketPhase labels an altcoin's strength relative to Bitcoin.
type MarketPhase string

const (
	PhaseStrongBitcoinSeason MarketPhase = "STRONG_BITCOIN_SEASON"
	PhaseBitcoinSeason       MarketPhase = "BITCOIN_SEASON"
	PhaseEarlyTransition     MarketPhase = "EARLY_TRANSITION"
	PhaseLateTransition      MarketPhase = "LATE_TRANSITION"
	PhaseAltcoinSeason       MarketPhase = "ALTCOIN_SEASON"
	PhaseStrongAltcoinSeason MarketPhase = "STRONG_ALTCOIN_SEASON"
	PhasePeakAltcoinSeason   MarketPhase = "PEAK_ALTCOIN_SEASON"
)

// PhaseResult is the BTC-relative view of a symbol combined with its fiat
// signal into one strategic insight.
type PhaseResult struct {
	PairRisk    float64     `json:"pair_risk"`
	PairBand    int         `json:"pair_band"`
	MarketPhase MarketPhase `json:"market_phase"`
	Insight     string      `json:"insight"`
}

// Analysis is the full record returned by the analyze operation.
type Analysis struct {
	Symbol         string            `json:"symbol"`
	Price          float64           `json:"price"`
	Risk           float64           `json:"risk"`
	Band           int               `json:"band"`
	BandLabel      string            `json:"band_label"`
	DaysInBand     int               `json:"days_in_band"`
	TotalDays      int               `json:"total_days"`
	BaseScore      float64           `json:"base_score"`
	Coefficient    float64           `json:"coefficient"`
	TotalScore     float64           `json:"total_score"`
	SignalType     SignalType        `json:"signal_type"`
	SignalStrength SignalStrength    `json:"signal_strength"`
	Target         *TargetSuggestion `json:"target,omitempty"`
	Phase          *PhaseResult      `json:"phase,omitempty"`
	Timestamp      time.Time         `json:"timestamp"`
}

// SignalEvent is published to the signals topic when a symbol's band changes
// or its daily score is refreshed.
type SignalEvent struct {
	Symbol         string         `json:"symbol"`
	Risk           float64        `json:"risk"`
	Band           int            `json:"band"`
	PreviousBand   int            `json:"previous_band"`
	TotalScore     float64        `json:"total_score"`
	SignalType     SignalType     `json:"signal_type"`
	SignalStrength SignalStrength `json:"signal_strength"`
	Reason         string         `json:"reason"` // band_change | daily_refresh
	Timestamp      int64          `json:"t"`
}

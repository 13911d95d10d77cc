package repository

import (
	"context"
	"time"

	"RiskPulse/internal/domain/models"
)

// GridStore serves read-only snapshots of the (price, risk) grids. Grids are
// ingested wholesale by an external pipeline; the engine only reads the latest
// snapshot per (symbol, denomination).
type GridStore interface {
	Latest(ctx context.Context, symbol string, denom models.Denomination) ([]models.GridPoint, error)
	Replace(ctx context.Context, symbol string, denom models.Denomination, points []models.GridPoint) error
	Health(ctx context.Context) error
}

// StateStore persists per-symbol mutable state: the current risk position,
// the band time distribution, and the cached score. One writer per symbol.
type StateStore interface {
	GetState(ctx context.Context, symbol string) (*models.CurrentRiskState, error)
	PutState(ctx context.Context, st *models.CurrentRiskState) error

	GetDistribution(ctx context.Context, symbol string) (*models.BandTimeDistribution, error)
	PutDistribution(ctx context.Context, d *models.BandTimeDistribution) error

	GetScore(ctx context.Context, symbol string) (*models.ScoreResult, error)
	PutScore(ctx context.Context, s *models.ScoreResult) error

	Health(ctx context.Context) error
	Close() error
}

// HistoryStore is the append-only daily history, unique per (symbol, date).
type HistoryStore interface {
	Get(ctx context.Context, symbol string, date time.Time) (*models.DailyHistoryRecord, error)
	Upsert(ctx context.Context, rec *models.DailyHistoryRecord) error
	Range(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.DailyHistoryRecord, error)
	Health(ctx context.Context) error
	Close() error
}

// Locker hands out per-symbol per-date advisory locks for the daily update.
type Locker interface {
	// AcquireDaily returns true when this caller won the (symbol, date) lock.
	AcquireDaily(ctx context.Context, symbol string, date time.Time) (bool, error)
	// ReleaseDaily frees the (symbol, date) lock so a failed run can retry.
	ReleaseDaily(ctx context.Context, symbol string, date time.Time) error
}

// PriceStream is a live price feed (WebSocket or similar).
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.PriceUpdate, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalPublisher emits signal events to downstream consumers.
type SignalPublisher interface {
	Publish(ctx context.Context, ev *models.SignalEvent) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordUpdate(symbol string)
	RecordError(kind string)
	RecordRisk(symbol string, risk float64)
	RecordLatency(op string, seconds float64)
}

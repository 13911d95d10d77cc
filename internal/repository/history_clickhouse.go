package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"RiskPulse/internal/domain/models"
	pkgch "RiskPulse/pkg/clickhouse"
	applogger "RiskPulse/pkg/logger"
)

// HistorySchema returns idempotent DDL for the daily history table. The
// ReplacingMergeTree keyed by (symbol, date) makes the daily upsert naturally
// idempotent: re-running a day replaces the row instead of duplicating it.
func HistorySchema() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS riskpulse`,
		`CREATE TABLE IF NOT EXISTS riskpulse.daily_history (
            symbol LowCardinality(String),
            date Date,
            risk Float64,
            band UInt8,
            price Float64,
            updated_at DateTime DEFAULT now()
        ) ENGINE = ReplacingMergeTree(updated_at)
        ORDER BY (symbol, date)`,
	}
}

// CHHistoryStore persists one row per (symbol, date) in ClickHouse.
type CHHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

// Get returns the record for (symbol, date), or nil when the day is absent.
func (s *CHHistoryStore) Get(ctx context.Context, symbol string, date time.Time) (*models.DailyHistoryRecord, error) {
	const q = `
        SELECT date, risk, band, price
        FROM riskpulse.daily_history FINAL
        WHERE symbol = ? AND date = ?
        LIMIT 1
    `
	rec := models.DailyHistoryRecord{Symbol: symbol}
	row := s.db.QueryRowContext(ctx, q, symbol, date.UTC().Truncate(24*time.Hour))
	if err := row.Scan(&rec.Date, &rec.Risk, &rec.Band, &rec.Price); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("history get: %w", err)
	}
	return &rec, nil
}

func (s *CHHistoryStore) Upsert(ctx context.Context, rec *models.DailyHistoryRecord) error {
	const q = `
        INSERT INTO riskpulse.daily_history (symbol, date, risk, band, price)
        VALUES (?, ?, ?, ?, ?)
    `
	_, err := s.db.ExecContext(ctx, q,
		rec.Symbol,
		rec.Date.UTC().Truncate(24*time.Hour),
		rec.Risk,
		rec.Band,
		rec.Price,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history upsert error",
				applogger.String("symbol", rec.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("history upsert: %w", err)
	}
	return nil
}

func (s *CHHistoryStore) Range(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.DailyHistoryRecord, error) {
	start := time.Now()
	if limit <= 0 {
		limit = 90
	}
	const q = `
        SELECT date, risk, band, price
        FROM riskpulse.daily_history FINAL
        WHERE symbol = ? AND date >= ? AND date <= ?
        ORDER BY date DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol,
		from.UTC().Truncate(24*time.Hour),
		to.UTC().Truncate(24*time.Hour),
		limit,
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history range query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("history range: %w", err)
	}
	defer rows.Close()

	out := make([]models.DailyHistoryRecord, 0, limit)
	for rows.Next() {
		rec := models.DailyHistoryRecord{Symbol: symbol}
		if err := rows.Scan(&rec.Date, &rec.Risk, &rec.Band, &rec.Price); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse history range ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHHistoryStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHHistoryStore) Close() error {
	return nil // pool is owned by pkg/clickhouse
}

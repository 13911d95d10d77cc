package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"RiskPulse/internal/domain/models"
	pkgch "RiskPulse/pkg/clickhouse"
	applogger "RiskPulse/pkg/logger"
)

// GridSchema returns idempotent DDL for the grid snapshot table.
func GridSchema() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS riskpulse`,
		`CREATE TABLE IF NOT EXISTS riskpulse.risk_grid (
            symbol LowCardinality(String),
            denomination LowCardinality(String),
            version UInt64,
            risk Float64,
            price Float64
        ) ENGINE = MergeTree
        ORDER BY (symbol, denomination, version, risk)`,
	}
}

// CHGridStore serves grid snapshots from ClickHouse. Every Replace writes a
// new version; Latest reads only the newest version so readers never observe
// a half-written grid.
type CHGridStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHGridStore(ch *pkgch.Client) *CHGridStore {
	return &CHGridStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHGridStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHGridStore) Latest(ctx context.Context, symbol string, denom models.Denomination) ([]models.GridPoint, error) {
	start := time.Now()
	const q = `
        SELECT risk, price
        FROM riskpulse.risk_grid
        WHERE symbol = ? AND denomination = ?
          AND version = (
            SELECT max(version) FROM riskpulse.risk_grid
            WHERE symbol = ? AND denomination = ?
          )
        ORDER BY risk ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, string(denom), symbol, string(denom))
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse grid latest query error",
				applogger.String("symbol", symbol),
				applogger.String("denomination", string(denom)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("grid latest: %w", err)
	}
	defer rows.Close()

	out := make([]models.GridPoint, 0, 64)
	for rows.Next() {
		p := models.GridPoint{Symbol: symbol, Denomination: denom}
		if err := rows.Scan(&p.Risk, &p.Price); err != nil {
			return nil, fmt.Errorf("scan grid point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse grid latest ok",
			applogger.String("symbol", symbol),
			applogger.String("denomination", string(denom)),
			applogger.Int("points", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHGridStore) Replace(ctx context.Context, symbol string, denom models.Denomination, points []models.GridPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("grid replace: empty point set for %s/%s", symbol, denom)
	}

	version := uint64(time.Now().UnixNano())
	values := make([]string, 0, len(points))
	args := make([]interface{}, 0, len(points)*5)
	for _, p := range points {
		values = append(values, "(?, ?, ?, ?, ?)")
		args = append(args, symbol, string(denom), version, p.Risk, p.Price)
	}

	q := fmt.Sprintf(
		"INSERT INTO riskpulse.risk_grid (symbol, denomination, version, risk, price) VALUES %s",
		strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("grid replace: %w", err)
	}

	if s.l != nil {
		s.l.Info("grid snapshot replaced",
			applogger.String("symbol", symbol),
			applogger.String("denomination", string(denom)),
			applogger.Int("points", len(points)),
		)
	}
	return nil
}

func (s *CHGridStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

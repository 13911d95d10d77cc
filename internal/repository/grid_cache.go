package repository

import (
	"context"
	"fmt"
	"time"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/domain/repository"
	"RiskPulse/pkg/cache"
)

// CachedGridStore wraps a GridStore with a cache layer. Grids change at most
// once per ingestion run, so a short TTL keeps the hot path off ClickHouse.
type CachedGridStore struct {
	inner repository.GridStore
	cache cache.Service
	ttl   time.Duration
}

func NewCachedGridStore(inner repository.GridStore, c cache.Service, ttl time.Duration) *CachedGridStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedGridStore{inner: inner, cache: c, ttl: ttl}
}

func gridKey(symbol string, denom models.Denomination) string {
	return fmt.Sprintf("grid:%s:%s", symbol, denom)
}

func (s *CachedGridStore) Latest(ctx context.Context, symbol string, denom models.Denomination) ([]models.GridPoint, error) {
	key := gridKey(symbol, denom)

	var cached []models.GridPoint
	if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	points, err := s.inner.Latest(ctx, symbol, denom)
	if err != nil {
		return nil, err
	}
	if len(points) > 0 {
		_ = s.cache.Set(ctx, key, points, s.ttl)
	}
	return points, nil
}

func (s *CachedGridStore) Replace(ctx context.Context, symbol string, denom models.Denomination, points []models.GridPoint) error {
	if err := s.inner.Replace(ctx, symbol, denom, points); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, gridKey(symbol, denom))
	return nil
}

func (s *CachedGridStore) Health(ctx context.Context) error {
	return s.inner.Health(ctx)
}

package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"RiskPulse/internal/domain/models"
	"RiskPulse/pkg/util"
)

// Memory-backed stores for single-node deployments (state_backend: memory)
// and tests. Same contracts as the Redis/ClickHouse implementations.

type MemoryGridStore struct {
	mu    sync.RWMutex
	grids map[string][]models.GridPoint
}

func NewMemoryGridStore() *MemoryGridStore {
	return &MemoryGridStore{grids: make(map[string][]models.GridPoint)}
}

func memGridKey(symbol string, denom models.Denomination) string {
	return fmt.Sprintf("%s|%s", symbol, denom)
}

func (s *MemoryGridStore) Latest(_ context.Context, symbol string, denom models.Denomination) ([]models.GridPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.grids[memGridKey(symbol, denom)]
	if !ok {
		return nil, nil
	}
	out := make([]models.GridPoint, len(points))
	copy(out, points)
	return out, nil
}

func (s *MemoryGridStore) Replace(_ context.Context, symbol string, denom models.Denomination, points []models.GridPoint) error {
	if len(points) == 0 {
		return fmt.Errorf("grid replace: empty point set for %s/%s", symbol, denom)
	}

	snapshot := make([]models.GridPoint, len(points))
	copy(snapshot, points)
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].Risk < snapshot[j].Risk })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.grids[memGridKey(symbol, denom)] = snapshot
	return nil
}

func (s *MemoryGridStore) Health(context.Context) error { return nil }

type MemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]models.CurrentRiskState
	dists  map[string]models.BandTimeDistribution
	scores map[string]models.ScoreResult
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		states: make(map[string]models.CurrentRiskState),
		dists:  make(map[string]models.BandTimeDistribution),
		scores: make(map[string]models.ScoreResult),
	}
}

func (s *MemoryStateStore) GetState(_ context.Context, symbol string) (*models.CurrentRiskState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.states[symbol]; ok {
		return &st, nil
	}
	return nil, nil
}

func (s *MemoryStateStore) PutState(_ context.Context, st *models.CurrentRiskState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.Symbol] = *st
	return nil
}

func (s *MemoryStateStore) GetDistribution(_ context.Context, symbol string) (*models.BandTimeDistribution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.dists[symbol]; ok {
		return &d, nil
	}
	return nil, nil
}

func (s *MemoryStateStore) PutDistribution(_ context.Context, d *models.BandTimeDistribution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dists[d.Symbol] = *d
	return nil
}

func (s *MemoryStateStore) GetScore(_ context.Context, symbol string) (*models.ScoreResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sc, ok := s.scores[symbol]; ok {
		return &sc, nil
	}
	return nil, nil
}

func (s *MemoryStateStore) PutScore(_ context.Context, sc *models.ScoreResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[sc.Symbol] = *sc
	return nil
}

func (s *MemoryStateStore) Health(context.Context) error { return nil }

func (s *MemoryStateStore) Close() error { return nil }

type MemoryHistoryStore struct {
	mu   sync.RWMutex
	recs map[string]models.DailyHistoryRecord
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{recs: make(map[string]models.DailyHistoryRecord)}
}

func memHistoryKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s|%s", symbol, util.DayKey(date))
}

func (s *MemoryHistoryStore) Get(_ context.Context, symbol string, date time.Time) (*models.DailyHistoryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.recs[memHistoryKey(symbol, date)]; ok {
		return &rec, nil
	}
	return nil, nil
}

func (s *MemoryHistoryStore) Upsert(_ context.Context, rec *models.DailyHistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs[memHistoryKey(rec.Symbol, rec.Date)] = *rec
	return nil
}

func (s *MemoryHistoryStore) Range(_ context.Context, symbol string, from, to time.Time, limit int) ([]models.DailyHistoryRecord, error) {
	if limit <= 0 {
		limit = 90
	}

	s.mu.RLock()
	out := make([]models.DailyHistoryRecord, 0)
	for _, rec := range s.recs {
		if rec.Symbol != symbol {
			continue
		}
		day := util.TruncateDay(rec.Date)
		if day.Before(util.TruncateDay(from)) || day.After(util.TruncateDay(to)) {
			continue
		}
		out = append(out, rec)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryHistoryStore) Health(context.Context) error { return nil }

func (s *MemoryHistoryStore) Close() error { return nil }

type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]struct{})}
}

func (l *MemoryLocker) AcquireDaily(_ context.Context, symbol string, date time.Time) (bool, error) {
	key := fmt.Sprintf("%s|%s", symbol, util.DayKey(date))

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.locks[key]; held {
		return false, nil
	}
	l.locks[key] = struct{}{}
	return true, nil
}

func (l *MemoryLocker) ReleaseDaily(_ context.Context, symbol string, date time.Time) error {
	key := fmt.Sprintf("%s|%s", symbol, util.DayKey(date))

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, key)
	return nil
}

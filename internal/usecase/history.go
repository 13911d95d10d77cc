package usecase

import (
	"context"
	"fmt"
	"time"

	"RiskPulse/internal/domain/models"
	domrepo "RiskPulse/internal/domain/repository"
)

// HistoryUseCase provides business logic for reading the daily risk history.
type HistoryUseCase struct {
	store domrepo.HistoryStore
}

func NewHistoryUseCase(store domrepo.HistoryStore) *HistoryUseCase {
	return &HistoryUseCase{store: store}
}

type GetHistoryParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	Limit  int
}

type GetHistoryResult struct {
	Symbol  string
	From    time.Time
	To      time.Time
	Count   int
	Records []models.DailyHistoryRecord
}

func (uc *HistoryUseCase) GetHistory(ctx context.Context, p GetHistoryParams) (*GetHistoryResult, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 90
	}
	if p.Limit > 3650 {
		p.Limit = 3650
	}

	records, err := uc.store.Range(ctx, p.Symbol, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	return &GetHistoryResult{
		Symbol:  p.Symbol,
		From:    p.From,
		To:      p.To,
		Count:   len(records),
		Records: records,
	}, nil
}

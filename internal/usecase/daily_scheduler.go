package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	applogger "RiskPulse/pkg/logger"
	"RiskPulse/pkg/queue"
	"RiskPulse/pkg/util"
)

const AdvanceDayMessage = "advance_day"

// AdvancePayload is the queue payload for one symbol's daily advance.
type AdvancePayload struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"` // YYYY-MM-DD, UTC
}

// DailyAdvanceJob consumes advance_day messages from the queue.
type DailyAdvanceJob struct {
	updater *DailyUpdater
	logger  *applogger.Logger
}

func NewDailyAdvanceJob(updater *DailyUpdater, lgr *applogger.Logger) *DailyAdvanceJob {
	return &DailyAdvanceJob{updater: updater, logger: lgr}
}

func (j *DailyAdvanceJob) Name() string { return "daily-advance" }

func (j *DailyAdvanceJob) Type() string { return AdvanceDayMessage }

func (j *DailyAdvanceJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[AdvancePayload](payload)
	if err != nil {
		return fmt.Errorf("parse advance payload: %w", err)
	}
	date, ok := util.ParseDay(p.Date)
	if !ok {
		return fmt.Errorf("invalid date %q", p.Date)
	}

	if _, err := j.updater.AdvanceOneDay(ctx, p.Symbol, date); err != nil {
		return fmt.Errorf("advance %s: %w", p.Symbol, err)
	}
	return nil
}

var _ queue.Job = (*DailyAdvanceJob)(nil)

// DailyScheduler enqueues one advance_day message per symbol at the
// configured UTC wall-clock time.
type DailyScheduler struct {
	publisher queue.QueueService
	logger    *applogger.Logger
	symbols   []string
	runAt     string // "HH:MM", UTC

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewDailyScheduler(publisher queue.QueueService, lgr *applogger.Logger, symbols []string, runAt string) *DailyScheduler {
	if runAt == "" {
		runAt = "00:05"
	}
	return &DailyScheduler{
		publisher: publisher,
		logger:    lgr,
		symbols:   symbols,
		runAt:     runAt,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the scheduler loop until Stop is called.
func (s *DailyScheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			wait := time.Until(s.nextRun(time.Now().UTC()))
			timer := time.NewTimer(wait)

			select {
			case <-s.stopCh:
				timer.Stop()
				return
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.enqueueAll(ctx)
			}
		}
	}()
	s.logger.Info("daily scheduler started",
		applogger.String("run_at", s.runAt),
		applogger.Strings("symbols", s.symbols))
}

// Stop halts the scheduler and waits for the loop.
func (s *DailyScheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *DailyScheduler) enqueueAll(ctx context.Context) {
	day := util.DayKey(time.Now().UTC())
	for _, symbol := range s.symbols {
		payload := AdvancePayload{Symbol: symbol, Date: day}
		if err := s.publisher.PublishMessage(ctx, AdvanceDayMessage, payload); err != nil {
			s.logger.Error("enqueue daily advance failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
			continue
		}
	}
	s.logger.Info("daily advance enqueued",
		applogger.String("date", day),
		applogger.Int("symbols", len(s.symbols)))
}

// nextRun returns the next occurrence of runAt strictly after now.
func (s *DailyScheduler) nextRun(now time.Time) time.Time {
	t, err := time.Parse("15:04", s.runAt)
	if err != nil {
		t, _ = time.Parse("15:04", "00:05")
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}

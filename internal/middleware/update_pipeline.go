package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"RiskPulse/internal/domain/models"
	domrepo "RiskPulse/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, u *models.PriceUpdate) error
}

// UpdatePipeline sits between the price feeds and the risk processor. It
// validates, throttles per symbol, and buffers updates when downstream is
// unavailable. Risk state is idempotent per price, so dropped duplicates
// under throttle are harmless.
type UpdatePipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.PriceUpdate
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-symbol last accepted time
}

type PipelineOption func(*UpdatePipeline)

// WithMaxRPS sets the max updates per second per symbol.
func WithMaxRPS(n int) PipelineOption {
	return func(p *UpdatePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *UpdatePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewUpdatePipeline creates a new pipeline.
func NewUpdatePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *UpdatePipeline {
	p := &UpdatePipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   10,
		bufSize:  1000,
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan *models.PriceUpdate, p.bufSize)
	return p
}

// Start launches background flushing of buffered updates.
func (p *UpdatePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case u := <-p.bufCh:
				if u == nil {
					continue
				}
				if err := p.proc.Process(ctx, u); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					select {
					case p.bufCh <- u:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *UpdatePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards an update downstream, buffering
// on errors.
func (p *UpdatePipeline) Process(ctx context.Context, u *models.PriceUpdate) error {
	start := time.Now()
	if err := validateUpdate(u); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(u.Symbol, start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, u); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- u:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateUpdate(u *models.PriceUpdate) error {
	if u == nil {
		return fmt.Errorf("update nil")
	}
	if u.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if u.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if u.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	return nil
}

func (p *UpdatePipeline) allow(symbol string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	last := p.lastSeen[symbol]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[symbol] = now
		return true
	}
	return false
}

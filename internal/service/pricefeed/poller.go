package pricefeed

import (
	"context"
	"sync"
	"time"

	"RiskPulse/internal/domain/models"
	xhttp "RiskPulse/pkg/http"
	applogger "RiskPulse/pkg/logger"
)

// Poller is the REST fallback feed. It fetches quotes for the configured
// symbols on an interval and hands them to the same processor the WebSocket
// stream feeds.
type Poller struct {
	client   *xhttp.Client
	logger   *applogger.Logger
	pollURL  string
	apiKey   string
	symbols  []string
	interval time.Duration

	handle func(context.Context, *models.PriceUpdate) error

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// quoteResponse mirrors the feed's REST quote payload.
type quoteResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Time   int64   `json:"t"` // unix seconds
}

func NewPoller(
	lgr *applogger.Logger,
	pollURL, apiKey string,
	symbols []string,
	interval time.Duration,
	handle func(context.Context, *models.PriceUpdate) error,
) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		client:   xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		logger:   lgr,
		pollURL:  pollURL,
		apiKey:   apiKey,
		symbols:  symbols,
		interval: interval,
		handle:   handle,
		stopCh:   make(chan struct{}),
	}
}

// Start begins polling until Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopCh:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.pollOnce(ctx)
			}
		}
	}()
	p.logger.Info("price poller started",
		applogger.Strings("symbols", p.symbols),
		applogger.Duration("interval", p.interval))
}

// Stop halts polling and waits for the worker.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *Poller) pollOnce(ctx context.Context) {
	for _, symbol := range p.symbols {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		var q quoteResponse
		opts := &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    p.pollURL,
			QueryParams: map[string][]string{
				"symbol": {symbol},
			},
		}
		if p.apiKey != "" {
			opts.Headers = map[string]string{"X-Api-Key": p.apiKey}
		}

		if err := p.client.SendAndParse(ctx, opts, &q); err != nil {
			p.logger.Warn("price poll failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
			continue
		}
		if q.Price <= 0 {
			continue
		}

		ts := q.Time
		if ts <= 0 {
			ts = time.Now().Unix()
		}
		u := &models.PriceUpdate{
			Symbol:       symbol,
			Denomination: models.DenomFiat,
			Price:        q.Price,
			Timestamp:    ts,
		}
		if err := p.handle(ctx, u); err != nil {
			p.logger.Warn("price poll handle failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
		}
	}
}

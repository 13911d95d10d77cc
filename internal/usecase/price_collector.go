package usecase

import (
	"context"

	"RiskPulse/internal/domain/models"
	drepo "RiskPulse/internal/domain/repository"
	mid "RiskPulse/internal/middleware"
)

// PriceCollector reads the live price stream and feeds updates through the
// pipeline into the processor.
type PriceCollector struct {
	stream  drepo.PriceStream
	proc    *PriceProcessor
	metrics drepo.Metrics
	pipe    *mid.UpdatePipeline
}

// NewPriceCollector creates a new PriceCollector instance.
func NewPriceCollector(stream drepo.PriceStream, proc *PriceProcessor, metrics drepo.Metrics, pipe *mid.UpdatePipeline) *PriceCollector {
	return &PriceCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the price stream is connected.
func (c *PriceCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *PriceCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	upCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, upCh, errCh)
	return nil
}

func (c *PriceCollector) consume(ctx context.Context, upCh <-chan *models.PriceUpdate, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case u := <-upCh:
			if u == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, u)
			} else {
				_ = c.proc.Process(ctx, u)
			}
		}
	}
}

// Processor returns the underlying PriceProcessor for lifecycle management.
func (c *PriceCollector) Processor() *PriceProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *PriceCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}

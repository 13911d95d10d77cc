package usecase

import (
	"context"
	"encoding/json"
	"time"

	"RiskPulse/internal/domain/models"
	domrepo "RiskPulse/internal/domain/repository"
	pkgkafka "RiskPulse/pkg/kafka"
)

// KafkaPricesHandler consumes price messages from Kafka and routes them
// through the same pipeline as the WebSocket feed.
type KafkaPricesHandler struct {
	topic   string
	pipe    Proc
	metrics domrepo.Metrics
}

// Proc matches the pipeline/processor Process signature.
type Proc interface {
	Process(ctx context.Context, u *models.PriceUpdate) error
}

func NewKafkaPricesHandler(topic string, pipe Proc, metrics domrepo.Metrics) *KafkaPricesHandler {
	return &KafkaPricesHandler{topic: topic, pipe: pipe, metrics: metrics}
}

func (h *KafkaPricesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, c} with optional denomination
func (h *KafkaPricesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol string  `json:"symbol"`
		T      int64   `json:"t"`
		C      float64 `json:"c"`
		Denom  string  `json:"denomination"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	denom := models.DenomFiat
	if m.Denom == string(models.DenomBTC) {
		denom = models.DenomBTC
	}

	return h.pipe.Process(ctx, &models.PriceUpdate{
		Symbol:       m.Symbol,
		Denomination: denom,
		Price:        m.C,
		Timestamp:    m.T,
	})
}

var _ pkgkafka.MessageHandler = (*KafkaPricesHandler)(nil)

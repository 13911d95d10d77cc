package repository

import (
	"context"

	"RiskPulse/internal/domain/models"
	"RiskPulse/internal/domain/repository"
	pkgkafka "RiskPulse/pkg/kafka"
)

// KafkaSignalPublisher emits signal events keyed by symbol so a partition
// sees each symbol's events in order.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, ev *models.SignalEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(ev.Symbol), ev)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopSignalPublisher is used when Kafka is disabled.
type NopSignalPublisher struct{}

func (NopSignalPublisher) Publish(context.Context, *models.SignalEvent) error { return nil }

func (NopSignalPublisher) Close() error { return nil }

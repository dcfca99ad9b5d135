package repository

import (
	"context"

	drepo "BitSight/internal/domain/repository"
	pkgkafka "BitSight/pkg/kafka"
)

// KafkaEvents publishes pipeline lifecycle events to Kafka, keyed by symbol
// so per-asset ordering is preserved within a partition.
type KafkaEvents struct {
	producer     *pkgkafka.Producer
	refreshTopic string
	predictTopic string
}

var _ drepo.EventPublisher = (*KafkaEvents)(nil)

// NewKafkaEvents creates an event publisher over an existing producer.
func NewKafkaEvents(producer *pkgkafka.Producer, refreshTopic, predictTopic string) *KafkaEvents {
	return &KafkaEvents{
		producer:     producer,
		refreshTopic: refreshTopic,
		predictTopic: predictTopic,
	}
}

func (k *KafkaEvents) SnapshotRefreshed(ctx context.Context, ev drepo.RefreshEvent) error {
	return k.producer.Publish(ctx, k.refreshTopic, []byte(ev.Symbol), ev)
}

func (k *KafkaEvents) PredictionMade(ctx context.Context, ev drepo.PredictionEvent) error {
	return k.producer.Publish(ctx, k.predictTopic, []byte(ev.Symbol), ev)
}

func (k *KafkaEvents) Close() error {
	return k.producer.Close()
}

package repository

import (
	"context"

	"FinLiquidity/internal/domain/models"
	domrepo "FinLiquidity/internal/domain/repository"
)

// EventProducer is the subset of pkg/kafka.Producer the publisher needs.
type EventProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaPublisher writes index snapshots and refresh broadcasts to their topics.
type KafkaPublisher struct {
	producer     EventProducer
	indexTopic   string
	refreshTopic string
}

var _ domrepo.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(p EventProducer, indexTopic, refreshTopic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, indexTopic: indexTopic, refreshTopic: refreshTopic}
}

// PublishSnapshot keys by start date so every snapshot of one window lands on one partition.
func (p *KafkaPublisher) PublishSnapshot(ctx context.Context, s models.IndexSnapshot) error {
	return p.producer.Publish(ctx, p.indexTopic, []byte(s.Start.String()), s)
}

func (p *KafkaPublisher) PublishRefresh(ctx context.Context, e models.RefreshEvent) error {
	return p.producer.Publish(ctx, p.refreshTopic, []byte("refresh"), e)
}

func (p *KafkaPublisher) Close() error { return p.producer.Close() }

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

var _ domrepo.Publisher = NoopPublisher{}

func (NoopPublisher) PublishSnapshot(context.Context, models.IndexSnapshot) error { return nil }
func (NoopPublisher) PublishRefresh(context.Context, models.RefreshEvent) error   { return nil }
func (NoopPublisher) Close() error                                                { return nil }

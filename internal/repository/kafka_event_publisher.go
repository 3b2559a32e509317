package repository

import (
	"context"
	"time"

	"CorrScope/internal/domain/models"
	"CorrScope/pkg/kafka"
)

// resultComputedEvent is the wire form of a completed computation announcement.
type resultComputedEvent struct {
	RunID      string    `json:"run_id"`
	Symbol     string    `json:"symbol"`
	ParamsKey  string    `json:"params_key"`
	Entries    int       `json:"entries"`
	Candidates int       `json:"candidates"`
	Skipped    int       `json:"skipped"`
	ComputedAt time.Time `json:"computed_at"`
}

// KafkaEventPublisher announces completed computations on a Kafka topic,
// keyed by target symbol so per-symbol ordering is preserved.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaEventPublisher(producer *kafka.Producer, topic string) *KafkaEventPublisher {
	if topic == "" {
		topic = "corrscope.results"
	}
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) PublishResultComputed(ctx context.Context, res *models.CorrelationResult, runID string) error {
	ev := resultComputedEvent{
		RunID:      runID,
		Symbol:     res.Symbol,
		ParamsKey:  res.Params.CacheKey(res.Symbol),
		Entries:    len(res.Entries),
		Candidates: res.Candidates,
		Skipped:    res.Skipped,
		ComputedAt: res.ComputedAt,
	}
	return p.producer.Publish(ctx, p.topic, []byte(res.Symbol), ev)
}

func (p *KafkaEventPublisher) Close() error { return p.producer.Close() }

// NoopEventPublisher is used when Kafka is disabled.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishResultComputed(context.Context, *models.CorrelationResult, string) error {
	return nil
}

func (NoopEventPublisher) Close() error { return nil }

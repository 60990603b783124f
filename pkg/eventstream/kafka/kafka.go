// Package kafka publishes analysis events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/eventstream"
)

// DefaultTopic is the topic analysis events land on.
const DefaultTopic = "finsight.analysis.completed"

// writer is the kafka-go surface we use, narrowed for tests.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes analysis events to Kafka, keyed by event ID.
type Publisher struct {
	writer writer
	logger *zap.Logger
}

// PublisherConfig holds configuration for the Kafka publisher.
type PublisherConfig struct {
	// Brokers is the bootstrap broker list. Required.
	Brokers []string

	// Topic defaults to DefaultTopic.
	Topic string

	// Logger is optional.
	Logger *zap.Logger
}

// NewPublisher creates a Kafka-backed analysis event publisher.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	topic := cfg.Topic
	if topic == "" {
		topic = DefaultTopic
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &kafkago.Writer{
		Addr:     kafkago.TCP(cfg.Brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}
	return &Publisher{writer: w, logger: logger}, nil
}

// PublishAnalysis serializes the event as JSON and writes it keyed by
// event ID.
func (p *Publisher) PublishAnalysis(ctx context.Context, event *eventstream.AnalysisCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(event.EventID),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("writing event: %w", err)
	}

	p.logger.Debug("published analysis event", zap.String("event_id", event.EventID))
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ eventstream.Publisher = (*Publisher)(nil)

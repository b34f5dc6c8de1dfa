package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/oshokin/security-zone/internal/config"
	"github.com/oshokin/security-zone/internal/domain/zone"
)

// defaultBatchTimeout keeps single events from waiting for a full batch.
const defaultBatchTimeout = 10 * time.Millisecond

// messageWriter is the part of kafka.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes zone events to Kafka.
type Publisher struct {
	writer messageWriter
}

// New creates a publisher for the configured brokers and topic.
func New(cfg config.KafkaConfig) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           defaultBatchTimeout,
		AllowAutoTopicCreation: true,
	})
}

// newPublisher wraps an existing writer.
func newPublisher(writer messageWriter) *Publisher {
	return &Publisher{writer: writer}
}

// Name identifies the publisher in logs.
func (p *Publisher) Name() string {
	return "kafka"
}

// Publish writes the event as JSON keyed by zone name.
func (p *Publisher) Publish(ctx context.Context, event *zone.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Zone),
		Value: value,
		Time:  event.At,
		Headers: []kafka.Header{
			{Key: "output", Value: []byte(event.Output.String())},
			{Key: "source", Value: []byte(event.Source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

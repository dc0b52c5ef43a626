// Package kafka forwards record change events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"carbonintensity/internal/observability"
	"carbonintensity/internal/service"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	bufferSize   = 256
	writeTimeout = 10 * time.Second
)

// messageWriter is the subset of *kafkago.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes every change event on the bus to one topic
type Publisher struct {
	writer  messageWriter
	events  chan service.Event
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewPublisher creates a producer for topic on brokers
func NewPublisher(brokers []string, topic string, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(w, logger, metrics)
}

func newPublisher(w messageWriter, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		writer:  w,
		events:  make(chan service.Event, bufferSize),
		logger:  logger,
		metrics: metrics,
	}
}

// Attach subscribes the publisher to bus
func (p *Publisher) Attach(bus *service.EventBus) {
	bus.Subscribe(p.events)
}

// Run forwards events until ctx is cancelled. A failed write is logged and
// counted; the event is not retried.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-p.events:
			p.publish(ctx, ev)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, ev service.Event) {
	msg, err := serializeToMessage(ev)
	if err != nil {
		p.logger.Error("failed to serialize event", "type", ev.Type, "id", ev.RecordID, "error", err)
		p.metrics.EventPublished("kafka", "error")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.logger.Error("failed to publish event", "type", ev.Type, "id", ev.RecordID, "error", err)
		p.metrics.EventPublished("kafka", "error")
		return
	}
	p.metrics.EventPublished("kafka", "ok")
}

// Close flushes and closes the producer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a change event into a Kafka message keyed by
// record id, so every change to one record lands on the same partition.
func serializeToMessage(ev service.Event) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize change event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(ev.RecordID, 10)),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(ev.Type)},
			{Key: "occurred_at", Value: []byte(ev.OccurredAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}

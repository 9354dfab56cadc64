package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/laboquimica/kalium-review/internal/domains/returns/domain"
	"github.com/laboquimica/kalium-review/internal/domains/returns/ports"
)

// DefaultTopic receives every review event.
const DefaultTopic = "kalium.returns.review"

// DefaultPublishTimeout bounds one publish so a slow broker never holds a response.
const DefaultPublishTimeout = 2 * time.Second

// EventNameHeader carries the event name so consumers can route without decoding.
const EventNameHeader = "event-name"

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes review events to a topic keyed by return id, so the
// events of one return keep their order.
type KafkaPublisher struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafkaPublisher builds a synchronous writer for brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			BatchTimeout:           10 * time.Millisecond,
			WriteTimeout:           DefaultPublishTimeout,
			MaxAttempts:            2,
			AllowAutoTopicCreation: true,
		},
		timeout: DefaultPublishTimeout,
	}, nil
}

// Publish encodes event as JSON and writes it.
func (p *KafkaPublisher) Publish(ctx context.Context, event domain.Event) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka publisher not configured")
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event.EventName(), err)
	}
	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.AggregateID(), 10)),
		Value: value,
		Time:  event.OccurredAt(),
		Headers: []kafka.Header{
			{Key: EventNameHeader, Value: []byte(event.EventName())},
		},
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", event.EventName(), err)
	}
	return nil
}

// Close flushes pending messages.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

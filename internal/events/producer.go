package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes archive events to a single topic, keyed by activity id.
type KafkaPublisher struct {
	brokers []string
	topic   string
	mu      sync.Mutex
	writer  messageWriter
}

// NewKafkaPublisher creates a KafkaPublisher. The writer is created lazily on
// first publish.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{brokers: brokers, topic: topic}
}

// PublishArchived writes evt with event_type and run_id headers.
func (p *KafkaPublisher) PublishArchived(ctx context.Context, evt ActivityArchived) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(evt.ActivityID),
		Value: body,
		Time:  time.Now().UTC(),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeArchived)},
			{Key: "run_id", Value: []byte(evt.RunID)},
		},
	}
	return p.writerFor().WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) writerFor() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil {
		return p.writer
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Topic:        p.topic,
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		Async:        false,
	}
	return p.writer
}

// Close releases the underlying writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}

// NopPublisher discards events. It is used when no brokers are configured.
type NopPublisher struct{}

// PublishArchived implements the publisher contract.
func (NopPublisher) PublishArchived(context.Context, ActivityArchived) error { return nil }

// Close implements io.Closer.
func (NopPublisher) Close() error { return nil }

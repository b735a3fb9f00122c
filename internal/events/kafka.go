package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes events keyed by order id so one order's events stay
// on one partition.
type KafkaPublisher struct {
	w      messageWriter
	source string
}

func NewKafkaPublisher(w messageWriter, source string) *KafkaPublisher {
	return &KafkaPublisher{w: w, source: source}
}

// NewKafkaWriter returns a writer that hashes keys across partitions and
// waits for all replicas.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.OrderID),
		Value: val,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "source", Value: []byte(p.source)},
		},
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", e.Type, err)
	}
	return nil
}

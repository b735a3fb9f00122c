// Package ingest applies order messages from the orders topic to the store.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"demo/interview/internal/model"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Upserter is the slice of the service ingest needs.
type Upserter interface {
	CreateOrUpdateOrder(ctx context.Context, msg model.OrderMessage) error
}

type Consumer struct {
	r          messageReader
	svc        Upserter
	retryDelay time.Duration
}

const maxRetryDelay = 30 * time.Second

func NewConsumer(r messageReader, svc Upserter) *Consumer {
	return &Consumer{r: r, svc: svc, retryDelay: 500 * time.Millisecond}
}

// NewKafkaReader returns a consumer-group reader starting at the earliest
// offset for a new group.
func NewKafkaReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     group,
		MinBytes:    1e3,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
}

// Run consumes until ctx is canceled. Malformed messages are committed and
// skipped. A message whose upsert fails is retried until it succeeds, so no
// later offset is committed past it.
func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Printf("kafka fetch: %v", err)
			time.Sleep(c.retryDelay)
			continue
		}

		if err := c.apply(ctx, m); err != nil {
			if errors.Is(err, errPoison) {
				log.Printf("invalid message at offset %d: %v", m.Offset, err)
				if err := c.r.CommitMessages(context.Background(), m); err != nil {
					log.Printf("commit failed: %v", err)
				}
				continue
			}
			// ctx canceled mid-retry; the message stays uncommitted.
			return
		}

		if err := c.r.CommitMessages(ctx, m); err != nil {
			log.Printf("commit failed: %v", err)
		}
	}
}

// apply handles m, retrying store failures with a growing delay until it
// succeeds, turns out to be poison, or ctx is canceled.
func (c *Consumer) apply(ctx context.Context, m kafka.Message) error {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		err := c.handle(ctx, m.Value)
		if err == nil || errors.Is(err, errPoison) {
			return err
		}
		log.Printf("db upsert failed (offset=%d attempt=%d): %v", m.Offset, attempt, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay < maxRetryDelay {
			delay = min(2*delay, maxRetryDelay)
		}
	}
}

var errPoison = errors.New("poison message")

// handle decodes and applies one payload. Errors wrapping errPoison will
// never succeed on retry.
func (c *Consumer) handle(ctx context.Context, payload []byte) error {
	var msg model.OrderMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("%w: %v", errPoison, err)
	}
	if err := c.svc.CreateOrUpdateOrder(ctx, msg); err != nil {
		if errors.Is(err, model.ErrValidation) || errors.Is(err, model.ErrInvalidDateFormat) {
			return fmt.Errorf("%w: %v", errPoison, err)
		}
		return err
	}
	return nil
}

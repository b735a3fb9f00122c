// Package gen produces fake orders and profiles for the producer and tests.
package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/segmentio/kafka-go"

	"demo/interview/internal/model"
)

func SeedOnce() { _ = gofakeit.Seed(time.Now().UnixNano()) }

// FakeOrderMessage returns a valid message with a start date within a
// month back and three months ahead, and up to three distinct tags.
func FakeOrderMessage() model.OrderMessage {
	now := time.Now().UTC()
	start := gofakeit.DateRange(now.AddDate(0, -1, 0), now.AddDate(0, 3, 0))
	return model.OrderMessage{
		ID:        gofakeit.UUID(),
		StartDate: model.FormatDate(start),
		Tags:      FakeLabels(gofakeit.Number(0, 3)),
	}
}

// FakeLabels returns n distinct lower-case labels.
func FakeLabels(n int) []string {
	if n <= 0 {
		return nil
	}
	seen := make(map[string]bool, n)
	out := make([]string, 0, n)
	for len(out) < n {
		l := strings.ToLower(gofakeit.Adjective() + "-" + gofakeit.Noun())
		if len(out) > 0 && seen[l] {
			l = fmt.Sprintf("%s-%d", l, len(out))
		}
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func FakeProfileInput() model.CreateProfileInput {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	return model.CreateProfileInput{
		Email:     strings.ToLower(first + "." + last + "@" + gofakeit.DomainName()),
		Password:  gofakeit.Password(true, true, true, false, false, 16),
		Username:  gofakeit.Username(),
		FirstName: first,
		LastName:  last,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// SendOrderMessage writes msg to the orders topic keyed by order id.
func SendOrderMessage(ctx context.Context, w messageWriter, msg model.OrderMessage, source string) (int, error) {
	val, err := json.Marshal(msg)
	if err != nil {
		return 0, fmt.Errorf("marshal order: %w", err)
	}
	err = w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.ID),
		Value: val,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "source", Value: []byte(source)},
		},
	})
	if err != nil {
		return 0, err
	}
	log.Printf("produced key=%s src=%s", msg.ID, source)
	return 1, nil
}

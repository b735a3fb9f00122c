package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"demo/interview/internal/model"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{}, nil
}

func sampleEvent() Event {
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	return Event{
		Type:       OrderDeactivated,
		OrderID:    "o-1",
		OccurredAt: at,
		Order:      &model.Order{ID: "o-1", StartDate: at, CreatedAt: at},
	}
}

func header(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, "orders-service")

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, w.msgs, 1)

	m := w.msgs[0]
	require.Equal(t, "o-1", string(m.Key))
	require.Equal(t, "application/json", header(m, "content-type"))
	require.Equal(t, "order.deactivated", header(m, "event-type"))
	require.Equal(t, "orders-service", header(m, "source"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(m.Value, &body))
	require.Equal(t, "order.deactivated", body["type"])
	require.Equal(t, "o-1", body["order_id"])
	require.Equal(t, "2024-02-03", body["order"].(map[string]any)["start_date"])
	require.NotContains(t, body, "tag")
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaPublisher(&fakeWriter{err: boom}, "svc")
	err := p.Publish(context.Background(), sampleEvent())
	require.ErrorIs(t, err, boom)
}

func TestSQSPublisher_Publish(t *testing.T) {
	client := &fakeSQS{}
	p := NewSQSPublisher(client, "https://sqs.local/000/events")

	require.NoError(t, p.Publish(context.Background(), sampleEvent()))
	require.Len(t, client.inputs, 1)

	in := client.inputs[0]
	require.Equal(t, "https://sqs.local/000/events", *in.QueueUrl)
	require.Equal(t, "order.deactivated", *in.MessageAttributes["event_type"].StringValue)
	require.Equal(t, "String", *in.MessageAttributes["order_id"].DataType)
	require.Contains(t, *in.MessageBody, `"order_id":"o-1"`)
}

func TestSQSPublisher_Error(t *testing.T) {
	boom := errors.New("throttled")
	err := NewSQSPublisher(&fakeSQS{err: boom}, "q").Publish(context.Background(), sampleEvent())
	require.ErrorIs(t, err, boom)
}

func TestNop(t *testing.T) {
	require.NoError(t, Nop{}.Publish(context.Background(), sampleEvent()))
}

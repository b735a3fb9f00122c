package ingest

import (
	"context"
	"errors"
	"log"

	"github.com/aws/aws-lambda-go/events"
)

// SQSHandler applies an SQS batch of order messages. It reports only the
// records whose upsert failed so Lambda redelivers just those.
type SQSHandler struct {
	c *Consumer
}

func NewSQSHandler(svc Upserter) *SQSHandler {
	return &SQSHandler{c: &Consumer{svc: svc}}
}

func (h *SQSHandler) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		err := h.c.handle(ctx, []byte(rec.Body))
		switch {
		case err == nil:
		case errors.Is(err, errPoison):
			log.Printf("[ingest] dropping message=%s: %v", rec.MessageId, err)
		default:
			log.Printf("[ingest] message=%s failed: %v", rec.MessageId, err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

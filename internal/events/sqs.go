package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"demo/interview/internal/aws"
)

// SQSPublisher sends events to a single queue.
type SQSPublisher struct {
	SQS      aws.SQSAPI
	QueueURL string
}

func NewSQSPublisher(client aws.SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{SQS: client, QueueURL: queueURL}
}

func (p *SQSPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: awsString(string(body)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_type": stringAttr(string(e.Type)),
			"order_id":   stringAttr(e.OrderID),
		},
	}
	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func stringAttr(v string) sqstypes.MessageAttributeValue {
	return sqstypes.MessageAttributeValue{DataType: awsString("String"), StringValue: awsString(v)}
}

func awsString(s string) *string { return &s }

// Package metrics counts order and profile lifecycle events.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"demo/interview/internal/aws"
)

const (
	OrdersCreated     = "orders_created"
	OrdersDeactivated = "orders_deactivated"
	TagsCreated       = "tags_created"
	ProfilesCreated   = "profiles_created"
)

type Recorder interface {
	Incr(ctx context.Context, name string) error
}

type Nop struct{}

func (Nop) Incr(context.Context, string) error { return nil }

// CloudWatch publishes each increment as a single Count datapoint.
type CloudWatch struct {
	client    aws.CloudWatchAPI
	namespace string
	nowFunc   func() time.Time
}

func NewCloudWatch(client aws.CloudWatchAPI, namespace string) *CloudWatch {
	return &CloudWatch{client: client, namespace: namespace, nowFunc: time.Now}
}

func (c *CloudWatch) Incr(ctx context.Context, name string) error {
	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &c.namespace,
		MetricData: []cwtypes.MetricDatum{{
			MetricName: &name,
			Timestamp:  timePtr(c.nowFunc()),
			Unit:       cwtypes.StandardUnitCount,
			Value:      float64Ptr(1),
		}},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}

func timePtr(t time.Time) *time.Time { return &t }

func float64Ptr(v float64) *float64 { return &v }

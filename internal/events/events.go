// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"demo/interview/internal/model"
)

type Type string

const (
	OrderCreated     Type = "order.created"
	OrderDeactivated Type = "order.deactivated"
	TagCreated       Type = "tag.created"
)

type Event struct {
	Type       Type            `json:"type"`
	OrderID    string          `json:"order_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Order      *model.Order    `json:"order,omitempty"`
	Tag        *model.OrderTag `json:"tag,omitempty"`
}

// Publisher delivers events to a sink. Callers treat errors as best-effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

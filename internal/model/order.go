package model

import (
	"encoding/json"
	"time"
)

type Order struct {
	ID        string     `json:"id"`
	StartDate time.Time  `json:"start_date"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	Tags      []OrderTag `json:"tags"`
}

// MarshalJSON renders start_date as YYYY-MM-DD and tags as an empty list
// rather than null.
func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	tags := o.Tags
	if tags == nil {
		tags = []OrderTag{}
	}
	return json.Marshal(struct {
		alias
		StartDate string     `json:"start_date"`
		Tags      []OrderTag `json:"tags"`
	}{alias: alias(o), StartDate: FormatDate(o.StartDate), Tags: tags})
}

// OrderTag is a free-form label attached to exactly one order.
type OrderTag struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateOrderInput is what a client may set when creating an order.
// New orders are always active.
type CreateOrderInput struct {
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	Tags      []string `json:"tags,omitempty" validate:"omitempty,max=32,dive,required,max=64"`
}

type CreateTagInput struct {
	OrderID string `json:"order_id" validate:"required,uuid"`
	Label   string `json:"label" validate:"required,max=64"`
}

// OrderMessage is the payload read from the orders topic.
type OrderMessage struct {
	ID        string   `json:"id" validate:"required,uuid"`
	StartDate string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	Tags      []string `json:"tags,omitempty" validate:"omitempty,max=32,dive,required,max=64"`
}

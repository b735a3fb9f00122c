// Package service implements the order, tag and profile operations on top of
// the repositories.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"demo/interview/internal/events"
	"demo/interview/internal/metrics"
	"demo/interview/internal/model"
	"demo/interview/internal/store"
	"demo/interview/internal/validate"
)

type Service struct {
	repo      store.Repository
	profiles  store.ProfileRepository
	validator *validate.Validator
	publisher events.Publisher
	metrics   metrics.Recorder
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.publisher = p } }

func WithMetrics(r metrics.Recorder) Option { return func(s *Service) { s.metrics = r } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

func New(repo store.Repository, profiles store.ProfileRepository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		profiles:  profiles,
		validator: validate.New(),
		publisher: events.Nop{},
		metrics:   metrics.Nop{},
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.repo.ListOrders(ctx)
}

// ListOrdersInRange returns orders whose start date lies in
// [startDate, embargoDate]. Both bounds are YYYY-MM-DD.
func (s *Service) ListOrdersInRange(ctx context.Context, startDate, embargoDate string) ([]model.Order, error) {
	from, err := model.ParseDate("start_date", startDate)
	if err != nil {
		return nil, err
	}
	to, err := model.ParseDate("embargo_date", embargoDate)
	if err != nil {
		return nil, err
	}
	if from.After(to) {
		return []model.Order{}, nil
	}
	return s.repo.ListOrdersInRange(ctx, from, to)
}

func (s *Service) GetOrder(ctx context.Context, id string) (model.Order, error) {
	o, ok, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	if !ok {
		return model.Order{}, model.ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) CreateOrder(ctx context.Context, in model.CreateOrderInput) (model.Order, error) {
	if err := s.validator.Struct(in); err != nil {
		return model.Order{}, err
	}
	start, err := model.ParseDate("start_date", in.StartDate)
	if err != nil {
		return model.Order{}, err
	}

	now := s.now().UTC()
	o := model.Order{
		ID:        s.newID(),
		StartDate: start,
		IsActive:  true,
		CreatedAt: now,
	}
	o.Tags = s.newTags(o.ID, in.Tags, now)

	if err := s.repo.CreateOrder(ctx, o); err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	s.emit(ctx, events.Event{Type: events.OrderCreated, OrderID: o.ID, OccurredAt: now, Order: &o}, metrics.OrdersCreated)
	return o, nil
}

// DeactivateOrder is idempotent. The event and metric fire only on the
// active to inactive transition.
func (s *Service) DeactivateOrder(ctx context.Context, id string) (model.Order, error) {
	o, wasActive, err := s.repo.DeactivateOrder(ctx, id)
	if err != nil {
		return model.Order{}, err
	}
	if wasActive {
		s.emit(ctx, events.Event{Type: events.OrderDeactivated, OrderID: o.ID, OccurredAt: s.now().UTC(), Order: &o}, metrics.OrdersDeactivated)
	}
	return o, nil
}

// CreateOrUpdateOrder upserts an order received from the orders topic.
func (s *Service) CreateOrUpdateOrder(ctx context.Context, msg model.OrderMessage) error {
	if err := s.validator.Struct(msg); err != nil {
		return err
	}
	start, err := model.ParseDate("start_date", msg.StartDate)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	o := model.Order{ID: msg.ID, StartDate: start, IsActive: true, CreatedAt: now}
	o.Tags = s.newTags(o.ID, msg.Tags, now)
	return s.repo.UpsertOrder(ctx, o)
}

func (s *Service) newTags(orderID string, labels []string, at time.Time) []model.OrderTag {
	if len(labels) == 0 {
		return nil
	}
	tags := make([]model.OrderTag, 0, len(labels))
	for _, l := range labels {
		tags = append(tags, model.OrderTag{ID: s.newID(), OrderID: orderID, Label: l, CreatedAt: at})
	}
	return tags
}

func (s *Service) ListTags(ctx context.Context) ([]model.OrderTag, error) {
	return s.repo.ListTags(ctx)
}

func (s *Service) CreateTag(ctx context.Context, in model.CreateTagInput) (model.OrderTag, error) {
	if err := s.validator.Struct(in); err != nil {
		return model.OrderTag{}, err
	}
	now := s.now().UTC()
	t := model.OrderTag{ID: s.newID(), OrderID: in.OrderID, Label: in.Label, CreatedAt: now}
	if err := s.repo.CreateTag(ctx, t); err != nil {
		if errors.Is(err, model.ErrOrderNotFound) {
			return model.OrderTag{}, model.NewValidationError("order_id",
				fmt.Sprintf("invalid pk %q - object does not exist", in.OrderID))
		}
		return model.OrderTag{}, fmt.Errorf("create tag: %w", err)
	}
	s.emit(ctx, events.Event{Type: events.TagCreated, OrderID: t.OrderID, OccurredAt: now, Tag: &t}, metrics.TagsCreated)
	return t, nil
}

// emit publishes e and bumps metric. Failures are logged only.
func (s *Service) emit(ctx context.Context, e events.Event, metric string) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		log.Printf("publish %s order=%s: %v", e.Type, e.OrderID, err)
	}
	if err := s.metrics.Incr(ctx, metric); err != nil {
		log.Printf("metric %s: %v", metric, err)
	}
}

// hashPassword returns the bcrypt hash, or "" (unusable) for an empty password.
func hashPassword(password string) (string, error) {
	if password == "" {
		return "", nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", model.NewValidationError("password", "must be at most 72 bytes")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

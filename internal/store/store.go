package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"demo/interview/internal/model"
)

//go:generate mockgen -destination=storemock/mock_store.go -package=storemock demo/interview/internal/store Repository,ProfileRepository

// Repository persists orders and their tags.
type Repository interface {
	CreateOrder(ctx context.Context, o model.Order) error
	// UpsertOrder inserts o, or replaces start_date and tags of an existing
	// order. It never changes is_active of an existing order.
	UpsertOrder(ctx context.Context, o model.Order) error
	GetOrder(ctx context.Context, id string) (model.Order, bool, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	// ListOrdersInRange returns orders with from <= start_date <= to.
	ListOrdersInRange(ctx context.Context, from, to time.Time) ([]model.Order, error)
	// DeactivateOrder clears is_active and reports whether it was set before.
	// Returns model.ErrOrderNotFound for an unknown id.
	DeactivateOrder(ctx context.Context, id string) (o model.Order, wasActive bool, err error)
	// CreateTag returns model.ErrOrderNotFound when t.OrderID does not exist.
	CreateTag(ctx context.Context, t model.OrderTag) error
	ListTags(ctx context.Context) ([]model.OrderTag, error)
}

type ProfileRepository interface {
	// CreateProfile returns model.ErrProfileExists on a duplicate email or username.
	CreateProfile(ctx context.Context, p model.UserProfile) error
	GetProfileByEmail(ctx context.Context, email string) (model.UserProfile, bool, error)
	ListProfiles(ctx context.Context, f model.ProfileFilter) ([]model.UserProfile, error)
}

type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}
